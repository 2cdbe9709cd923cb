package middleware

import (
	"context"
	"net/http"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/stats"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// RequestIDHeader carries the per-request identifier back to the caller
const RequestIDHeader = "X-Request-ID"

// ResponseRecorder captures the status code and body size of a response
type ResponseRecorder struct {
	http.ResponseWriter
	StatusCode int
	BodySize   int
}

// NewResponseRecorder wraps w, assuming 200 until WriteHeader says otherwise
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rec *ResponseRecorder) WriteHeader(code int) {
	rec.StatusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *ResponseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.BodySize += n
	return n, err
}

// RequestID returns the identifier LoggingMiddleware assigned to the request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware logs one line per request and feeds the API counters
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rec := NewResponseRecorder(w)
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s := stats.Get()
		s.RecordRequest(r.URL.Path)
		s.RecordStatusCode(rec.StatusCode)
		s.RecordResponseTime(elapsed)

		color := getStatusColor(rec.StatusCode)
		log.WithField("request_id", id).Infof("%s %s %s %s%d%s %dB %v",
			logcolors.LogRequest, r.Method, r.URL.Path, color, rec.StatusCode, logcolors.Reset, rec.BodySize, elapsed)
	})
}

func getStatusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return logcolors.Green
	case code >= 300 && code < 400:
		return logcolors.Cyan
	case code >= 400 && code < 500:
		return "\033[33m"
	case code >= 500:
		return logcolors.Red
	default:
		return logcolors.Reset
	}
}
