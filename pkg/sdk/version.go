package sdk

// SupportedSchemaMajor is the major tool schema version this client
// understands. The server's hireline://schema major version must match.
const SupportedSchemaMajor = "1"
