package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	url := "https://tabs.example/song"
	tests := []struct {
		goos         string
		expectedName string
		expectedArgs []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
		{"darwin", "open", []string{url}},
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, url)
			if name != tt.expectedName {
				t.Errorf("Expected %s, got %s", tt.expectedName, name)
			}
			if !reflect.DeepEqual(args, tt.expectedArgs) {
				t.Errorf("Expected args %v, got %v", tt.expectedArgs, args)
			}
		})
	}
}

func TestBrowserOpener_Open(t *testing.T) {
	var started []string
	o := &browserOpener{goos: "darwin", start: func(name string, args ...string) error {
		started = append(started, name+" "+strings.Join(args, " "))
		return nil
	}}

	if err := o.Open("https://tabs.example/song"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(started) != 1 || started[0] != "open https://tabs.example/song" {
		t.Errorf("Expected open command, got %v", started)
	}

	o.start = func(name string, args ...string) error { return errors.New("not found") }
	if err := o.Open("https://tabs.example/song"); err == nil {
		t.Error("Expected error when the command cannot start")
	}
}
