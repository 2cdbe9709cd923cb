package nowplaying

import (
	"context"
	"errors"
	"os/exec"
)

var (
	// ErrUnsupported means the strategy cannot query this source
	ErrUnsupported = errors.New("source not supported by this strategy")

	// ErrNotRunning means the application was not found
	ErrNotRunning = errors.New("application is not running")
)

// Strategy reads the now-playing title of a source on one platform
type Strategy interface {
	Name() string
	WindowTitle(ctx context.Context, src Source) (string, error)
}

// CommandRunner runs an external program and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements CommandRunner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// StrategyFor returns the strategy for a GOOS value
func StrategyFor(goos string) Strategy {
	switch goos {
	case "windows":
		return NewWindowEnumStrategy(systemProcesses{}, systemWindows{})
	case "darwin":
		return &ScriptStrategy{Runner: ExecRunner{}}
	default:
		return &BusStrategy{Bus: &SessionBus{}, Runner: ExecRunner{}}
	}
}
