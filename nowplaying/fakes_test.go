package nowplaying

import (
	"context"
	"errors"
	"sync"

	"github.com/godbus/dbus/v5"
)

type fakeRunner struct {
	out  map[string]string // keyed by command name
	err  error
	args [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.args = append(f.args, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.out[name]
	if !ok {
		return nil, errors.New("executable file not found")
	}
	return []byte(out), nil
}

type fakeBus struct {
	metadata map[string]dbus.Variant
	err      error
	asked    []string
}

func (f *fakeBus) Metadata(ctx context.Context, busName string) (map[string]dbus.Variant, error) {
	f.asked = append(f.asked, busName)
	return f.metadata, f.err
}

type fakeProcesses struct {
	procs []Process
	err   error
}

func (f fakeProcesses) Processes() ([]Process, error) { return f.procs, f.err }

type fakeWindows struct {
	windows []Window
	err     error
}

func (f fakeWindows) Windows(pids []uint32) ([]Window, error) {
	want := map[uint32]bool{}
	for _, p := range pids {
		want[p] = true
	}
	var out []Window
	for _, w := range f.windows {
		if want[w.PID] {
			out = append(out, w)
		}
	}
	return out, f.err
}

// scriptedStrategy returns queued titles in order, repeating the last one
type scriptedStrategy struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) WindowTitle(ctx context.Context, src Source) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if len(s.titles) == 0 {
		return "", nil
	}
	title := s.titles[0]
	if len(s.titles) > 1 {
		s.titles = s.titles[1:]
	}
	return title, nil
}
