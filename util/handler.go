package util

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// ToolHandlerFunc aliases the server's handler type so wrapped handlers can
// be passed straight to MCPServer.AddTool.
type ToolHandlerFunc = server.ToolHandlerFunc

// ErrorGuard wraps a tool handler so that a panic is surfaced to the client
// as a tool error instead of tearing down the server.
func ErrorGuard(handler ToolHandlerFunc) ToolHandlerFunc {
	return func(arguments map[string]interface{}) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("tool handler panicked")
				result = mcp.NewToolResultError(fmt.Sprintf("internal error: %v", r))
				err = nil
			}
		}()
		return handler(arguments)
	}
}
