package engine

// Cursor records the last plain-lyrics provider tried for a song.
// Index -1 means no provider has been tried yet.
type Cursor struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
}

// start returns the first plain index to try for key, wrapping after the
// last provider. A cursor left by another song does not carry over.
func (c Cursor) start(key string, n int) int {
	if c.Key != key || c.Index >= n-1 {
		return 0
	}
	return c.Index + 1
}
