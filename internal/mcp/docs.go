package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `worklog watches running processes for meeting applications and keeps a log of finished meetings.

Core concepts:
- Rule: recognizes a meeting app by process name and/or window title. Lower priority runs first.
- Ongoing meeting: the meeting currently detected. Its guid and title stay fixed while the same rule keeps matching.
- Pending end: the meeting stopped being detected. It is logged automatically after the grace period unless confirmed, postponed or resumed.
- Postponement: suppresses end detection for one meeting until a chosen time (at most 24h ahead).

Typical workflow:
1) get_meeting_state to see what is tracked.
2) When a meeting is pending end, either confirm_meeting_end (optionally with a description and end time) or postpone_check.
3) end_meeting_manually closes a meeting that is still detected.
4) list_ended_meetings and get_recent_activity to review the log.

Times are RFC 3339 strings. Errors come back as {code, message, recovery_hint}.

Docs:
- worklog://docs/lifecycle
- worklog://docs/rules
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "worklog://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Meeting lifecycle",
		Description: "States a tracked meeting moves through and which tool drives each transition.",
		Content: `# Meeting lifecycle

A poll runs on a fixed interval (and on demand via ` + "`recognize_activity`" + `).

| Current state | Poll result | Next state |
|---|---|---|
| idle | meeting detected | ongoing (meeting.started) |
| ongoing | same rule matches | ongoing, guid and title unchanged |
| ongoing | different rule matches | previous meeting ends as replaced, new meeting ongoing |
| ongoing | nothing detected | pending end (meeting.end_confirmation_requested) |
| pending end | same rule matches | same meeting ongoing again, guid and start unchanged |
| pending end | different rule matches | pending meeting ends as replaced, new meeting ongoing |
| pending end | nothing detected, grace period elapsed | ended (auto_confirmed) |

User actions:

- ` + "`confirm_meeting_end`" + ` ends a pending meeting. The end time defaults to now and must lie between the meeting start and now.
- ` + "`end_meeting_manually`" + ` ends the ongoing meeting. Descriptions longer than 500 characters are rejected.
- ` + "`postpone_check`" + ` keeps a meeting tracked until the given time. While postponed, polls leave the tracked state untouched.
`,
	},
	{
		URI:         "worklog://docs/rules",
		Name:        "docs_rules",
		Title:       "Recognition rules",
		Description: "How rules match processes and how to write new ones.",
		Content: `# Recognition rules

Each rule has a criteria and one or two patterns:

- ` + "`process_name_only`" + `: only ` + "`process_name_pattern`" + ` is checked.
- ` + "`window_title_only`" + `: only ` + "`window_title_pattern`" + ` is checked.
- ` + "`both`" + `: both patterns must match the same process.

Match modes: ` + "`exact`, `contains`, `starts_with`, `regex`, `wildcard`" + `. Matching is case-insensitive unless ` + "`case_sensitive`" + ` is set.

Rules are evaluated in priority order (lower first). The rule that matched on the previous poll is tried first so an ongoing meeting keeps its identity.

Example:

    {"name": "Zoom call", "priority": 10, "criteria": "both",
     "process_name_pattern": {"value": "zoom", "match_mode": "contains"},
     "window_title_pattern": {"value": "Zoom Meeting", "match_mode": "exact"}}
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
