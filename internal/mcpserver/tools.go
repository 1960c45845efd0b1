// Package mcpserver exposes the key normalizer and structural differ as MCP
// tools. Every tool is pure: inputs arrive as JSON text, results leave as
// JSON text, and nothing touches an Ops Manager deployment.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsmanager-tools/omparity-go/internal/keyconv"
	"github.com/opsmanager-tools/omparity-go/internal/ratelimit"
	"github.com/opsmanager-tools/omparity-go/internal/structdiff"
)

// RegisterTools registers all tools on the given server. The budget caps
// tool invocations per window and may be nil to disable the cap.
func RegisterTools(server *mcp.Server, budget *ratelimit.CallBudget) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "structural_diff",
			Description: "Diff two JSON documents structurally, returning ordered difference records",
		},
		structuralDiffHandler(budget),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "normalize_keys",
			Description: "Recursively convert all object keys in a JSON document between camelCase and snake_case",
		},
		normalizeKeysHandler(budget),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "convert_key",
			Description: "Convert a single key between camelCase and snake_case",
		},
		convertKeyHandler(budget),
	)
}

type structuralDiffInput struct {
	// Left and Right are JSON documents as text.
	Left  string `json:"left"`
	Right string `json:"right"`
	// Ignore lists object keys to skip at every depth.
	Ignore []string `json:"ignore,omitempty"`
	// Normalize optionally converts keys on both sides before diffing
	// ("to_snake" or "to_camel").
	Normalize string `json:"normalize,omitempty"`
}

func structuralDiffHandler(budget *ratelimit.CallBudget) mcp.ToolHandlerFor[structuralDiffInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input structuralDiffInput) (*mcp.CallToolResult, any, error) {
		if err := acquire(budget, "structural_diff"); err != nil {
			return errorResult(err.Error()), nil, nil
		}

		var left, right any
		if err := json.Unmarshal([]byte(input.Left), &left); err != nil {
			return errorResult(fmt.Sprintf("parse left: %v", err)), nil, nil
		}
		if err := json.Unmarshal([]byte(input.Right), &right); err != nil {
			return errorResult(fmt.Sprintf("parse right: %v", err)), nil, nil
		}

		if input.Normalize != "" {
			dir := keyconv.Direction(input.Normalize)
			if !dir.Valid() {
				return errorResult(fmt.Sprintf("unknown normalize direction %q", input.Normalize)), nil, nil
			}
			left = keyconv.Normalize(left, dir)
			right = keyconv.Normalize(right, dir)
		}

		records := structdiff.Diff(left, right, structdiff.NewIgnore(input.Ignore...))
		if records == nil {
			records = []string{}
		}
		return textResult(map[string]any{
			"records": records,
			"count":   len(records),
		})
	}
}

type normalizeKeysInput struct {
	// Value is a JSON document as text.
	Value     string `json:"value"`
	Direction string `json:"direction"`
}

func normalizeKeysHandler(budget *ratelimit.CallBudget) mcp.ToolHandlerFor[normalizeKeysInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input normalizeKeysInput) (*mcp.CallToolResult, any, error) {
		if err := acquire(budget, "normalize_keys"); err != nil {
			return errorResult(err.Error()), nil, nil
		}

		dir := keyconv.Direction(input.Direction)
		if !dir.Valid() {
			return errorResult(fmt.Sprintf("unknown direction %q (use to_snake or to_camel)", input.Direction)), nil, nil
		}

		var value any
		if err := json.Unmarshal([]byte(input.Value), &value); err != nil {
			return errorResult(fmt.Sprintf("parse value: %v", err)), nil, nil
		}

		return textResult(keyconv.Normalize(value, dir))
	}
}

type convertKeyInput struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

func convertKeyHandler(budget *ratelimit.CallBudget) mcp.ToolHandlerFor[convertKeyInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input convertKeyInput) (*mcp.CallToolResult, any, error) {
		if err := acquire(budget, "convert_key"); err != nil {
			return errorResult(err.Error()), nil, nil
		}

		dir := keyconv.Direction(input.Direction)
		if !dir.Valid() {
			return errorResult(fmt.Sprintf("unknown direction %q (use to_snake or to_camel)", input.Direction)), nil, nil
		}

		var converted string
		switch dir {
		case keyconv.ToSnakeCase:
			converted = keyconv.ToSnake(input.Key)
		case keyconv.ToCamelCase:
			converted = keyconv.ToCamel(input.Key)
		}

		return textResult(map[string]string{"key": converted})
	}
}

// acquire charges one tool call against the budget.
func acquire(budget *ratelimit.CallBudget, tool string) error {
	if budget == nil {
		return nil
	}
	if err := budget.Check("mcp", tool); err != nil {
		return err
	}
	budget.Record("mcp", tool)
	return nil
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
