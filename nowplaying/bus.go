package nowplaying

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
)

// BusQuerier reads the MPRIS metadata of a player
type BusQuerier interface {
	Metadata(ctx context.Context, busName string) (map[string]dbus.Variant, error)
}

// SessionBus reads MPRIS metadata over the user's session bus. The
// connection is opened on first use and reopened after a failure.
type SessionBus struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

func (b *SessionBus) connect() (*dbus.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && b.conn.Connected() {
		return b.conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus unavailable: %w", err)
	}
	b.conn = conn
	return conn, nil
}

// Metadata implements BusQuerier
func (b *SessionBus) Metadata(ctx context.Context, busName string) (map[string]dbus.Variant, error) {
	conn, err := b.connect()
	if err != nil {
		return nil, err
	}

	obj := conn.Object(mprisPrefix+busName, dbus.ObjectPath(mprisPath))
	var value dbus.Variant
	err = obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, mprisPlayerIface, "Metadata").Store(&value)
	if err != nil {
		return nil, fmt.Errorf("metadata query failed: %w", err)
	}

	metadata, ok := value.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", value.Value())
	}
	return metadata, nil
}

// Close closes the connection, if any
func (b *SessionBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

var errIncompleteMetadata = errors.New("metadata lacks artist or title")

// titleFromMetadata formats "first artist - title"
func titleFromMetadata(metadata map[string]dbus.Variant) (string, error) {
	artistVar, ok := metadata["xesam:artist"]
	if !ok {
		return "", errIncompleteMetadata
	}
	titleVar, ok := metadata["xesam:title"]
	if !ok {
		return "", errIncompleteMetadata
	}

	var artist string
	switch v := artistVar.Value().(type) {
	case []string:
		if len(v) == 0 {
			return "", errIncompleteMetadata
		}
		artist = v[0]
	case string:
		artist = v
	default:
		return "", errIncompleteMetadata
	}

	title, ok := titleVar.Value().(string)
	if !ok {
		return "", errIncompleteMetadata
	}
	return artist + " - " + title, nil
}

// BusStrategy asks the player over MPRIS and falls back to scanning the X11
// window tree when the bus has no answer.
type BusStrategy struct {
	Bus    BusQuerier
	Runner CommandRunner
}

// Name implements Strategy
func (s *BusStrategy) Name() string {
	return "mpris"
}

// WindowTitle implements Strategy
func (s *BusStrategy) WindowTitle(ctx context.Context, src Source) (string, error) {
	var busErr error
	if src.BusName != "" && s.Bus != nil {
		metadata, err := s.Bus.Metadata(ctx, src.BusName)
		if err == nil {
			var title string
			if title, err = titleFromMetadata(metadata); err == nil && title != "" {
				return title, nil
			}
		}
		busErr = err
	}

	title, err := s.windowTree(ctx, src)
	if err != nil {
		if busErr != nil {
			return "", fmt.Errorf("bus: %v; window tree: %w", busErr, err)
		}
		return "", err
	}
	return title, nil
}

// Close releases the bus connection, if one was opened
func (s *BusStrategy) Close() error {
	if c, ok := s.Bus.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *BusStrategy) windowTree(ctx context.Context, src Source) (string, error) {
	if src.LinuxCommand == "" || s.Runner == nil {
		return "", ErrUnsupported
	}
	out, err := s.Runner.Run(ctx, "xwininfo", "-tree", "-root")
	if err != nil {
		return "", fmt.Errorf("xwininfo failed: %w", err)
	}
	return parseWindowTree(string(out), src.LinuxCommand), nil
}

// parseWindowTree returns the quoted name of the first window whose class
// pair is ("cmd" "cmd") and whose name looks like "Artist - Title".
func parseWindowTree(tree, command string) string {
	class := `("` + command + `" "` + command + `")`
	for _, line := range strings.Split(tree, "\n") {
		if !strings.Contains(strings.ToLower(line), class) || !strings.Contains(line, " - ") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) > 1 {
			return parts[1]
		}
	}
	return ""
}
