package router

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// matchedRoutePath returns the registered route pattern, so that
// /users/:id is reported once instead of per id. It falls back to the raw
// path for unmatched requests.
func matchedRoutePath(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

// observer traces, counts and logs every request passing through the router.
type observer struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
	masker   instrument.Masker
	bodies   bool
}

func newObserver(cfg config.Config, ins instrument.Instrumentation) *observer {
	if ins == nil {
		ins = instrument.NewNoop()
	}

	o := &observer{tracer: ins.Tracer("http.server"), bodies: true}
	if cfg != nil {
		o.masker = instrument.NewMasker(cfg.GetArray("instrument.log_mask_fields"))
		o.bodies = cfg.GetBool("instrument.log_http_bodies")
	}

	meter := ins.Meter("http.server")
	var err error
	if o.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received")); err != nil {
		slog.Error("router: request counter unavailable", "error", err)
	}
	if o.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms")); err != nil {
		slog.Error("router: duration histogram unavailable", "error", err)
	}

	return o
}

// peekBody reads up to bodyCaptureLimit bytes of the request body and puts
// them back in front of the unread remainder.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, bodyCaptureLimit)) //nolint:errcheck // logging only
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

// loggable renders a captured body for the log line. Only JSON is logged
// verbatim, with sensitive keys masked.
func (o *observer) loggable(contentType string, body []byte, truncated bool) any {
	if !o.bodies || len(body) == 0 {
		return nil
	}
	if mt, _, _ := mime.ParseMediaType(contentType); mt == "application/json" && !truncated {
		if masked, ok := o.masker.JSON(body); ok {
			return masked
		}
	}
	return slog.GroupValue(
		slog.String("content_type", contentType),
		slog.Int("size", len(body)),
		slog.Bool("truncated", truncated),
	)
}

func (o *observer) record(ctx context.Context, attrs []attribute.KeyValue, elapsed time.Duration) {
	opt := metric.WithAttributes(attrs...)
	if o.requests != nil {
		o.requests.Add(ctx, 1, opt)
	}
	if o.duration != nil {
		o.duration.Record(ctx, float64(elapsed.Microseconds())/1000, opt)
	}
}

func (o *observer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := matchedRoutePath(r)

		ctx, span := o.tracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
			),
		)
		defer span.End()

		reqBody := peekBody(r)
		slog.InfoContext(ctx, "request received",
			"method", r.Method,
			"path", route,
			"client_ip", ClientIP(r),
			"body", o.loggable(r.Header.Get("Content-Type"), reqBody, len(reqBody) == bodyCaptureLimit),
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.statusCode()
		elapsed := time.Since(start)

		if rec.err != nil {
			span.RecordError(rec.err)
		}
		switch {
		case status >= http.StatusInternalServerError && rec.err != nil:
			span.SetStatus(codes.Error, rec.err.Error())
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, http.StatusText(status))
		default:
			span.SetStatus(codes.Ok, "")
		}

		attrs := []attribute.KeyValue{
			semconv.HTTPRequestMethodKey.String(r.Method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
		}
		span.SetAttributes(append(attrs, semconv.HTTPResponseBodySize(rec.written))...)
		o.record(ctx, attrs, elapsed)

		slog.InfoContext(ctx, "response sent",
			"method", r.Method,
			"path", route,
			"status", status,
			"bytes", rec.written,
			"latency_ms", elapsed.Milliseconds(),
			"body", o.loggable(rec.Header().Get("Content-Type"), rec.captured.Bytes(), rec.truncated),
		)
	})
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	return newObserver(cfg, ins).middleware
}
