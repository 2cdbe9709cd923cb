//go:build !windows

package nowplaying

type systemProcesses struct{}

func (systemProcesses) Processes() ([]Process, error) {
	return nil, ErrUnsupported
}

type systemWindows struct{}

func (systemWindows) Windows(pids []uint32) ([]Window, error) {
	return nil, ErrUnsupported
}
