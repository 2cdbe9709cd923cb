package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"

	BrightGreen   = "\033[92m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightRed     = "\033[91m"
)

// Cache-related log prefixes
const (
	LogCacheInit   = Blue + "[Cache:Init]" + Reset
	LogCache       = Blue + "[Cache]" + Reset
	LogCacheBackup = Blue + "[Cache:Backup]" + Reset
	LogCacheClear  = Blue + "[Cache:Clear]" + Reset
	LogCacheSweep  = Blue + "[Cache:Sweep]" + Reset
	LogCacheLyrics = Green + "[Cache:Lyrics]" + Reset
	LogCacheRedis  = Cyan + "[Cache:Redis]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}

var providerColors = []string{
	Green, Blue, Purple, Cyan, Red,
	BrightGreen, BrightBlue, BrightMagenta, BrightCyan, BrightRed,
}

// Provider returns a colored "[name]" prefix.
// The same provider name always gets the same color.
func Provider(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	color := providerColors[hash%len(providerColors)]
	return color + "[" + name + "]" + Reset
}

// Server/Init log prefixes
const (
	LogServer   = Green + "[Server]" + Reset
	LogConfig   = Cyan + "[Config]" + Reset
	LogStats    = Blue + "[Stats]" + Reset
	LogNotifier = BrightBlue + "[Notifier]" + Reset
)

// Playback detection log prefixes
const (
	LogDetector = Cyan + "[Detector]" + Reset
	LogWatcher  = Green + "[Watcher]" + Reset
	LogTrack    = BrightGreen + "[Track]" + Reset
	LogEnrich   = BrightCyan + "[Enrich]" + Reset
	LogChords   = BrightMagenta + "[Chords]" + Reset
)

// Lyrics acquisition log prefixes
const (
	LogEngine   = Purple + "[Engine]" + Reset
	LogRequest  = Purple + "[Request]" + Reset
	LogSearch   = Blue + "[Search]" + Reset
	LogHTTP     = Cyan + "[HTTP]" + Reset
	LogMatch    = Green + "[Match]" + Reset
	LogSuccess  = Green + "[Success]" + Reset
	LogLyrics   = Blue + "[Lyrics]" + Reset
	LogFallback = Cyan + "[Fallback]" + Reset
	LogCursor   = Cyan + "[Cursor]" + Reset
	LogWarning  = Red + "[Warning]" + Reset
)
