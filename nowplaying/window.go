package nowplaying

import "context"

// Process is one running process
type Process struct {
	PID        uint32
	Executable string
}

// Window is one top-level window
type Window struct {
	PID     uint32
	Title   string
	Visible bool
}

// ProcessLister enumerates running processes
type ProcessLister interface {
	Processes() ([]Process, error)
}

// WindowLister enumerates the top-level windows owned by pids
type WindowLister interface {
	Windows(pids []uint32) ([]Window, error)
}

// WindowEnumStrategy finds the application's processes by executable name
// and reads the title of their first visible, titled window.
type WindowEnumStrategy struct {
	procs ProcessLister
	wins  WindowLister
}

// NewWindowEnumStrategy builds the strategy over the given listers
func NewWindowEnumStrategy(procs ProcessLister, wins WindowLister) *WindowEnumStrategy {
	return &WindowEnumStrategy{procs: procs, wins: wins}
}

// Name implements Strategy
func (s *WindowEnumStrategy) Name() string {
	return "window-enum"
}

// WindowTitle implements Strategy
func (s *WindowEnumStrategy) WindowTitle(ctx context.Context, src Source) (string, error) {
	if src.ExecutableName == "" {
		return "", ErrUnsupported
	}

	procs, err := s.procs.Processes()
	if err != nil {
		return "", err
	}

	var pids []uint32
	for _, p := range procs {
		if p.Executable == src.ExecutableName {
			pids = append(pids, p.PID)
		}
	}
	if len(pids) == 0 {
		return "", ErrNotRunning
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	windows, err := s.wins.Windows(pids)
	if err != nil {
		return "", err
	}

	// pids keep process order, windows keep enumeration order within a pid
	for _, pid := range pids {
		for _, w := range windows {
			if w.PID == pid && w.Visible && w.Title != "" {
				return w.Title, nil
			}
		}
	}
	return "", nil
}
