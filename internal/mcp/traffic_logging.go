package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// trafficLoggingMiddleware logs every request and response at debug level.
// It costs nothing when debug logging is off.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			attrs := []any{"direction", direction, "method", method, "session_id", safeSessionID(req)}
			if tool := toolName(req); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp request", append(attrs, "params", formatPayload(safeParams(req)))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}
			attrs = append(attrs, "elapsed", time.Since(start), "result", formatPayload(result))
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp response", attrs...)
			return result, err
		}
	}
}

func toolName(req sdkmcp.Request) string {
	call, ok := req.(*sdkmcp.CallToolRequest)
	if !ok || call == nil || call.Params == nil {
		return ""
	}
	return call.Params.Name
}

// The SDK's request accessors panic on partially built requests; logging
// must never take the call down with it.
func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
