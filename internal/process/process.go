// Package process takes snapshots of running desktop processes and the
// titles of their main windows.
package process

import "context"

// Snapshot describes one running process at the moment it was sampled.
type Snapshot struct {
	ProcessName     string `json:"process_name"`
	MainWindowTitle string `json:"main_window_title"`
}

// Source enumerates running processes. Processes without a visible window
// are reported with an empty MainWindowTitle.
type Source interface {
	GetProcesses(ctx context.Context) ([]Snapshot, error)
}
