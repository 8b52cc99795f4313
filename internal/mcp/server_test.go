package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/stretchr/testify/require"
)

func connectClient(t *testing.T, server *sdkmcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "worklog-test", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_ToolsOverSession(t *testing.T) {
	ctx := context.Background()
	guid := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tracker := &trackerStub{
		state: meeting.State{Ongoing: &meeting.StartedMeeting{GUID: guid, StartDate: start, Title: "Standup"}},
		endFn: func(context.Context, uuid.UUID, string, *time.Time) (*meeting.EndedMeeting, error) {
			return nil, &meeting.ValidationError{Field: "description", Message: "must be at most 500 characters"}
		},
	}
	server := NewServer(Config{
		Services:      Services{Tracker: tracker, Rules: ruleStub{}, Activity: activityStub{}},
		TransportMode: "stdio",
	})
	session := connectClient(t, server)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, len(buildToolCatalog()))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_meeting_state", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	var state MeetingStateResponse
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &state))
	require.Equal(t, statusOngoing, state.Status)
	require.Equal(t, guid, state.Ongoing.GUID)

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "end_meeting_manually",
		Arguments: map[string]any{"guid": guid.String()},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &apiErr))
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestServer_DocResources(t *testing.T) {
	ctx := context.Background()
	server := NewServer(Config{Services: Services{Tracker: &trackerStub{}, Rules: ruleStub{}, Activity: activityStub{}}})
	session := connectClient(t, server)

	res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "worklog://docs/rules"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "Match modes")
}
