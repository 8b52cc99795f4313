package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func patternSchema(description string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": description,
		"properties": map[string]any{
			"value": map[string]any{
				"type":        "string",
				"description": "Pattern text",
			},
			"match_mode": map[string]any{
				"type": "string",
				"enum": []string{"exact", "contains", "starts_with", "regex", "wildcard"},
			},
			"case_sensitive": map[string]any{
				"type": "boolean",
			},
		},
		"required": []string{"value", "match_mode"},
	}
}

func endSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"guid": map[string]any{
				"type":        "string",
				"description": "Meeting guid from get_meeting_state",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Optional description replacing the detected title",
			},
			"end_time": map[string]any{
				"type":        "string",
				"description": "Optional end time (RFC 3339); defaults to now",
			},
		},
		"required": []string{"guid"},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// State
		{
			Name:        "get_meeting_state",
			Description: "Get the tracked meeting: ongoing, pending end confirmation, or idle, plus any postponement",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "recognize_activity",
			Description: "Run one detection poll now and return the resulting meeting state",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Lifecycle
		{
			Name:        "confirm_meeting_end",
			Description: "Confirm that a meeting pending end has finished and log it",
			InputSchema: endSchema(),
		},
		{
			Name:        "end_meeting_manually",
			Description: "End the ongoing meeting now, even though it is still detected",
			InputSchema: endSchema(),
		},
		{
			Name:        "postpone_check",
			Description: "Suppress end detection for a meeting until the given time (at most 24h ahead)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"guid": map[string]any{
						"type":        "string",
						"description": "Meeting guid from get_meeting_state",
					},
					"until": map[string]any{
						"type":        "string",
						"description": "Postpone until this time (RFC 3339)",
					},
				},
				"required": []string{"guid", "until"},
			},
		},
		{
			Name:        "list_ended_meetings",
			Description: "List logged meetings, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"since": map[string]any{
						"type":        "string",
						"description": "Only meetings ending at or after this time (RFC 3339)",
					},
					"until": map[string]any{
						"type":        "string",
						"description": "Only meetings starting before this time (RFC 3339)",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},

		// Rules
		{
			Name:        "list_rules",
			Description: "List recognition rules in evaluation order with match statistics",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "create_rule",
			Description: "Create a recognition rule matching a process name and/or window title",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Rule display name",
					},
					"priority": map[string]any{
						"type":        "integer",
						"description": "Evaluation order; lower runs first",
					},
					"criteria": map[string]any{
						"type": "string",
						"enum": []string{"process_name_only", "window_title_only", "both"},
					},
					"process_name_pattern": patternSchema("Pattern applied to the process name"),
					"window_title_pattern": patternSchema("Pattern applied to the main window title"),
				},
				"required": []string{"name", "criteria"},
			},
		},
		{
			Name:        "delete_rule",
			Description: "Delete a recognition rule",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Rule ID",
					},
				},
				"required": []string{"id"},
			},
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "Get recent meeting lifecycle activity, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"meeting_id": map[string]any{
						"type":        "string",
						"description": "Meeting guid to filter by",
					},
					"type": map[string]any{
						"type": "string",
						"enum": []string{"meeting_started", "meeting_end_requested", "meeting_ended", "meeting_check_postponed"},
					},
					"since": map[string]any{
						"type":        "string",
						"description": "Timestamp to fetch activity since (RFC 3339)",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of activity entries",
					},
				},
			},
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				logger.Debug("tool call failed", "tool", name, "error", err)
				return errorResult(err), nil
			}
			return textResult(result)
		})
	}
}

func textResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

// errorResult reports a failed call inside the result so the client model
// can see the code and recovery hint.
func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: true,
	}
}
