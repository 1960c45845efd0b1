// Command mcp-omparity runs the MCP tool server for structural diff and key
// normalization. Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsmanager-tools/omparity-go/internal/mcpserver"
	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
)

func main() {
	budget := ratelimit.NewCallBudget(60, time.Minute)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "omparity",
		Version: "v0.2.0",
	}, nil)
	mcpserver.RegisterTools(server, budget)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
