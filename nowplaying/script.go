package nowplaying

import (
	"context"
	"fmt"
	"strings"
)

// ScriptStrategy asks the application through osascript
type ScriptStrategy struct {
	Runner CommandRunner
}

// Name implements Strategy
func (s *ScriptStrategy) Name() string {
	return "applescript"
}

// WindowTitle implements Strategy
func (s *ScriptStrategy) WindowTitle(ctx context.Context, src Source) (string, error) {
	if src.AppleApplication == "" || src.AppleScript == "" {
		return "", ErrUnsupported
	}

	script := fmt.Sprintf("tell application %q\n%s\nend tell", src.AppleApplication, src.AppleScript)
	out, err := s.Runner.Run(ctx, "osascript", "-e", script)
	if err != nil {
		return "", fmt.Errorf("osascript failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
