package router

import (
	"bytes"
	"net/http"
)

const bodyCaptureLimit = 32 << 10

// responseRecorder remembers what a handler wrote so the observability
// middleware can report it. Only the first bodyCaptureLimit bytes of the
// body are kept.
type responseRecorder struct {
	http.ResponseWriter
	status    int
	written   int
	captured  bytes.Buffer
	truncated bool
	err       error
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.status == 0 {
		rr.status = code
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}
	if room := bodyCaptureLimit - rr.captured.Len(); room > 0 {
		rr.captured.Write(p[:min(room, len(p))])
		rr.truncated = rr.truncated || len(p) > room
	} else if len(p) > 0 {
		rr.truncated = true
	}

	n, err := rr.ResponseWriter.Write(p)
	rr.written += n
	return n, err
}

// SetError attaches the handler error to the span of the current request.
func (rr *responseRecorder) SetError(err error) { rr.err = err }

// Unwrap lets http.ResponseController reach the underlying writer.
func (rr *responseRecorder) Unwrap() http.ResponseWriter { return rr.ResponseWriter }

func (rr *responseRecorder) statusCode() int {
	if rr.status == 0 {
		return http.StatusOK
	}
	return rr.status
}
