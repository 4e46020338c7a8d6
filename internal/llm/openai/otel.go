package openai

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/bakkerme/pagewalk/internal/config"

	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// captureMiddleware records request/response metadata on the active span.
// When body capture is enabled the JSON payloads are attached too, truncated
// at MaxBodyBytes, so a trace shows exactly what the classifier was asked and
// what it answered.
func captureMiddleware(cfg config.OpenAIOTelEnvConfig) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		span := trace.SpanFromContext(req.Context())

		if cfg.CaptureBodies && span.IsRecording() && req.Body != nil {
			req.Body = newCaptureReader(req.Body, cfg.MaxBodyBytes, func(body []byte, truncated bool) {
				span.AddEvent("openai.request.body", trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("http.url", req.URL.String()),
					attribute.String("body", attributeSafeString(body)),
					attribute.Bool("truncated", truncated),
				))
			})
		}

		res, err := next(req)
		if err != nil || res == nil {
			return res, err
		}

		if span.IsRecording() {
			span.AddEvent("openai.response.meta", trace.WithAttributes(
				attribute.Int("http.status_code", res.StatusCode),
			))
		}

		if cfg.CaptureBodies && span.IsRecording() && res.Body != nil {
			res.Body = newCaptureReader(res.Body, cfg.MaxBodyBytes, func(body []byte, truncated bool) {
				span.AddEvent("openai.response.body", trace.WithAttributes(
					attribute.Int("http.status_code", res.StatusCode),
					attribute.String("body", attributeSafeString(body)),
					attribute.Bool("truncated", truncated),
				))
			})
		}

		return res, nil
	}
}

// captureReader tees up to maxBytes of a body into a buffer and hands the
// captured prefix to onClose exactly once.
type captureReader struct {
	rc        io.ReadCloser
	maxBytes  int
	buf       bytes.Buffer
	truncated bool
	closeOnce sync.Once
	onClose   func([]byte, bool)
}

func newCaptureReader(rc io.ReadCloser, maxBytes int, onClose func([]byte, bool)) io.ReadCloser {
	if rc == nil {
		return rc
	}
	return &captureReader{rc: rc, maxBytes: maxBytes, onClose: onClose}
}

func (c *captureReader) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if n > 0 && c.maxBytes != 0 {
		remaining := c.maxBytes - c.buf.Len()
		if c.maxBytes < 0 {
			remaining = n
		}
		switch {
		case remaining >= n:
			_, _ = c.buf.Write(p[:n])
		case remaining > 0:
			_, _ = c.buf.Write(p[:remaining])
			c.truncated = true
		default:
			c.truncated = true
		}
	}
	return n, err
}

func (c *captureReader) Close() error {
	c.closeOnce.Do(func() {
		if c.onClose != nil {
			c.onClose(c.buf.Bytes(), c.truncated)
		}
	})
	return c.rc.Close()
}

// attributeSafeString makes a captured body safe for attribute transport;
// invalid UTF-8 bytes are replaced.
func attributeSafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return strings.ToValidUTF8(string(b), "�")
}
