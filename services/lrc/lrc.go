// Package lrc reads and cleans LRC timed lyrics.
package lrc

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// LRC timestamp pattern: [mm:ss.xx] or [mm:ss:xx]
	timeRegex = regexp.MustCompile(`\[(\d{2,}):(\d{2})[\.:]+(\d{2,3})\]`)

	// Metadata tags pattern: [tag:value]
	metadataRegex = regexp.MustCompile(`^\[([a-zA-Z]+):([^\]]*)\]$`)

	// Credit lines such as "[00:05.00]Composed by：xxx" use a full-width colon
	bannedRegex = regexp.MustCompile(`^\[\d{2,}:\d{2}[\.:]\d{2,3}\].+：.+`)
)

const (
	// PureMusicText is the placeholder Chinese sources use for instrumental tracks
	PureMusicText = "纯音乐，请欣赏"

	// InstrumentalText replaces PureMusicText
	InstrumentalText = "[Instrumental Only]"

	// maxHeadTailLines bounds the credit-line scan at each end
	maxHeadTailLines = 30
)

// Line is one timed lyrics line.
type Line struct {
	StartMs int64
	Text    string
}

// Metadata holds the ID tags of an LRC document.
type Metadata struct {
	Artist  string
	Title   string
	Album   string
	Creator string
	Offset  string
}

// IsSynced reports whether content has at least one timed line with text.
func IsSynced(content string) bool {
	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSpace(raw)
		loc := timeRegex.FindStringIndex(raw)
		if loc == nil || loc[0] != 0 {
			continue
		}
		if strings.TrimSpace(timeRegex.ReplaceAllString(raw, "")) != "" {
			return true
		}
	}
	return false
}

// Parse splits content into timed lines sorted by start time. A line with
// several leading timestamps is emitted once per timestamp.
func Parse(content string) ([]Line, Metadata) {
	var lines []Line
	var meta Metadata

	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if m := metadataRegex.FindStringSubmatch(raw); len(m) == 3 {
			value := strings.TrimSpace(m[2])
			switch strings.ToLower(m[1]) {
			case "ar":
				meta.Artist = value
			case "ti":
				meta.Title = value
			case "al":
				meta.Album = value
			case "by":
				meta.Creator = value
			case "offset":
				meta.Offset = value
			}
			continue
		}

		var stamps []int64
		text := raw
		for {
			loc := timeRegex.FindStringSubmatchIndex(text)
			if loc == nil || loc[0] != 0 {
				break
			}
			stamps = append(stamps, toMillis(text[loc[2]:loc[3]], text[loc[4]:loc[5]], text[loc[6]:loc[7]]))
			text = text[loc[1]:]
		}

		text = strings.TrimSpace(text)
		if text == "" || len(stamps) == 0 {
			continue
		}
		for _, ms := range stamps {
			lines = append(lines, Line{StartMs: ms, Text: text})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].StartMs < lines[j].StartMs })
	return lines, meta
}

func toMillis(mm, ss, frac string) int64 {
	m, _ := strconv.ParseInt(mm, 10, 64)
	s, _ := strconv.ParseInt(ss, 10, 64)
	f, _ := strconv.ParseInt(frac, 10, 64)
	if len(frac) == 2 {
		f *= 10
	}
	return m*60*1000 + s*1000 + f
}

// PlainText drops timestamps and tags, keeping one text line per timed line.
func PlainText(content string) string {
	lines, _ := Parse(content)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return strings.Join(out, "\n")
}

// StripMetadata removes ID tags, keeping only timed lines.
func StripMetadata(content string) string {
	var kept []string
	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" || metadataRegex.MatchString(raw) {
			continue
		}
		if timeRegex.MatchString(raw) {
			kept = append(kept, raw)
		}
	}
	return strings.Join(kept, "\n")
}

// Normalize drops credit lines from the head and tail of content and
// replaces the pure-music placeholder.
func Normalize(content string) string {
	content = strings.ReplaceAll(content, "&apos;", "'")

	if strings.Contains(content, PureMusicText) {
		return "[00:00.00]" + InstrumentalText
	}

	var accepted []string
	for _, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSpace(raw)
		if raw != "" && timeRegex.MatchString(raw) {
			accepted = append(accepted, raw)
		}
	}
	if len(accepted) == 0 {
		return content
	}

	// drop everything up to the last credit line near the head
	head := 0
	limit := maxHeadTailLines
	if limit > len(accepted) {
		limit = len(accepted)
	}
	for i := limit - 1; i >= 0; i-- {
		if bannedRegex.MatchString(accepted[i]) {
			head = i + 1
			break
		}
	}

	// and from the first credit line near the tail
	tail := 0
	for i := 0; i < maxHeadTailLines && i < len(accepted); i++ {
		idx := len(accepted) - 1 - i
		if idx < head {
			break
		}
		if bannedRegex.MatchString(accepted[idx]) {
			tail = i + 1
			break
		}
	}

	end := len(accepted) - tail
	if end < head {
		end = head
	}
	return strings.Join(accepted[head:end], "\n")
}

// DecodeBase64 decodes base64 LRC payloads, dropping a leading BOM.
func DecodeBase64(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}
