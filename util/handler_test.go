package util

import (
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wrapped handlers must be directly usable with MCPServer.AddTool.
var _ server.ToolHandlerFunc = ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
})

func TestErrorGuardPassesThrough(t *testing.T) {
	handler := ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf("value=%v", arguments["key"])), nil
	})

	result, err := handler(map[string]interface{}{"key": "v"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestErrorGuardRecoversPanic(t *testing.T) {
	handler := ErrorGuard(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		panic("boom")
	})

	result, err := handler(nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
