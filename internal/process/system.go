package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	psprocess "github.com/shirou/gopsutil/v4/process"
)

// TitleLister returns window titles keyed by owning pid. The first title
// listed for a pid is treated as its main window.
type TitleLister func(ctx context.Context) (map[int]string, error)

type namedProcess struct {
	pid  int
	name string
}

type nameLister func(ctx context.Context) ([]namedProcess, error)

// System reads process names through gopsutil and window titles from a
// TitleLister (wmctrl by default).
type System struct {
	names  nameLister
	titles TitleLister
	logger *slog.Logger
}

// NewSystem returns a Source over the host's process table. A nil titles
// lister means WmctrlTitles.
func NewSystem(titles TitleLister, logger *slog.Logger) *System {
	return newSystem(processNames, titles, logger)
}

func newSystem(names nameLister, titles TitleLister, logger *slog.Logger) *System {
	if titles == nil {
		titles = WmctrlTitles
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &System{names: names, titles: titles, logger: logger}
}

// GetProcesses lists every running process ordered by pid. A failing title
// lister only costs the titles; names are still returned.
func (s *System) GetProcesses(ctx context.Context) ([]Snapshot, error) {
	procs, err := s.names(ctx)
	if err != nil {
		return nil, err
	}

	titles, err := s.titles(ctx)
	if err != nil {
		s.logger.Debug("window titles unavailable", "error", err)
		titles = nil
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].pid < procs[j].pid })
	snapshots := make([]Snapshot, 0, len(procs))
	for _, p := range procs {
		snapshots = append(snapshots, Snapshot{
			ProcessName:     p.name,
			MainWindowTitle: titles[p.pid],
		})
	}
	return snapshots, nil
}

func processNames(ctx context.Context) ([]namedProcess, error) {
	procs, err := psprocess.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	named := make([]namedProcess, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Exited since the listing.
			continue
		}
		named = append(named, namedProcess{pid: int(p.Pid), name: name})
	}
	return named, nil
}

// WmctrlTitles lists top-level window titles through `wmctrl -lp`.
func WmctrlTitles(ctx context.Context) (map[int]string, error) {
	out, err := exec.CommandContext(ctx, "wmctrl", "-lp").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running wmctrl: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("running wmctrl: %w", err)
	}
	return parseWmctrl(out), nil
}

// parseWmctrl parses lines of the form
// "0x03a00003  0 4242   host Window title with spaces".
func parseWmctrl(out []byte) map[int]string {
	titles := make(map[int]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		pid, err := strconv.Atoi(fields[2])
		if err != nil || pid <= 0 {
			continue
		}
		if _, seen := titles[pid]; seen {
			continue
		}
		titles[pid] = strings.Join(fields[4:], " ")
	}
	return titles
}
