// Package sdk provides a typed Go client for the hireline MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per hireline tool
// and retries transient transport failures via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("hireline", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	if _, err := c.Initialize(ctx); err != nil {
//		return err
//	}
//	snap, _ := c.Snapshot(ctx)
//	fmt.Println(snap.Capacity.Confirmed)
package sdk
