package providers

const (
	// NotFound is the lyrics text of a result that found nothing.
	NotFound = "Error: Could not find lyrics."

	// NoResultProvider is the provider name reported when every provider missed.
	NoResultProvider = "---"
)

// Result is what a lyrics lookup yields. Values are never modified after
// they are returned.
type Result struct {
	// Lyrics holds LRC text for synced results, plain text otherwise,
	// or NotFound.
	Lyrics string `json:"lyrics"`

	// URL points at the page or API resource the lyrics came from
	URL string `json:"url"`

	// Provider is the name of the provider that produced the result
	Provider string `json:"provider"`

	// Synced is true when Lyrics carries per-line timestamps
	Synced bool `json:"synced"`
}

// Found reports whether the result carries lyrics.
func (r Result) Found() bool {
	return r.Lyrics != NotFound && r.Lyrics != ""
}

// Miss returns the result a provider reports when it has nothing for a song.
func Miss(provider string) Result {
	return Result{Lyrics: NotFound, Provider: provider}
}

// Exhausted is the result of a walk in which every provider missed.
func Exhausted() Result {
	return Result{Lyrics: NotFound, Provider: NoResultProvider}
}

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}
