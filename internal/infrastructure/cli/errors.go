package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/backend"
	"github.com/felixgeelhaar/hireline/pkg/chat"
	"github.com/felixgeelhaar/hireline/pkg/push"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		hint := "Check the backend logs for details"
		switch {
		case statusErr.Code == 401 || statusErr.Code == 403:
			hint = "Set HIRELINE_AUTH_TOKEN or the auth.* client credentials"
		case statusErr.Code == 404:
			hint = "The backend does not serve " + statusErr.Path + "; check api_base"
		case statusErr.Code >= 500:
			hint = "The backend is failing; retry once it is healthy"
		}
		return NewCLIError("backend rejected the request", hint, err)
	}

	switch {
	case errors.Is(err, config.ErrInvalid):
		return NewCLIError("configuration is invalid", "Fix the listed fields in "+config.DefaultFile+" or the HIRELINE_* variables", err)
	case errors.Is(err, application.ErrNoSelection):
		return NewCLIError("no job selected", "Pass --job <id>; 'hireline synth --jobs 5' lists ids", err)
	case errors.Is(err, application.ErrNoBackend):
		return NewCLIError("no backend configured", "Set api_base in "+config.DefaultFile+" or HIRELINE_API_BASE", err)
	case errors.Is(err, push.ErrUnsupportedScheme):
		return NewCLIError("push stream url is not http(s) or ws(s)", "Check api_base and stream_path", err)
	case errors.Is(err, chat.ErrClosed):
		return NewCLIError("chat session closed", "Restart the command", err)
	case errors.Is(err, wiring.ErrNoConfigFile):
		return NewCLIError("nothing to watch", "Pass --config <file> or create "+config.DefaultFile, err)
	}

	return err
}
