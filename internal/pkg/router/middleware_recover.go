package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/assetly/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 with the generic
// error body. http.ErrAbortHandler is re-raised so net/http can drop the
// connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel compared by identity
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			attrs := []any{"panic", rvr, "method", r.Method, "path", r.URL.Path}
			if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
				attrs = append(attrs, "frames", frames)
			} else {
				attrs = append(attrs, "stack", string(stack))
			}
			slog.ErrorContext(r.Context(), "recovered from handler panic", attrs...)

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
