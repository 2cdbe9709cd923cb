package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserOpener opens URLs with the desktop's default handler
type browserOpener struct {
	goos  string
	start func(name string, args ...string) error
}

func newBrowserOpener() *browserOpener {
	return &browserOpener{goos: runtime.GOOS, start: startDetached}
}

// openCommand returns the program and arguments that open url on goos
func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open launches the handler without waiting for it
func (o *browserOpener) Open(url string) error {
	name, args := openCommand(o.goos, url)
	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
