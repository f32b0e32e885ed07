package inertia

import (
	"bytes"
	"net/http"
)

var _ http.ResponseWriter = (*responseWriter)(nil)

// responseWriter buffers the downstream handler's response so the
// middleware can rewrite the status code or substitute an empty response
// before anything reaches the wire.
type responseWriter struct {
	http.ResponseWriter

	body       bytes.Buffer
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	//nolint:exhaustruct
	return &responseWriter{ResponseWriter: w}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b) //nolint:wrapcheck
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

// Empty reports whether the handler produced neither a body nor a status
// code. A bodiless redirect is not empty.
func (w *responseWriter) Empty() bool {
	return w.statusCode == 0 && w.body.Len() == 0
}

// flush forwards the buffered status code and body to the underlying
// response writer.
func (w *responseWriter) flush() {
	if w.statusCode != 0 {
		w.ResponseWriter.WriteHeader(w.statusCode)
	}

	if w.body.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.body.Bytes())
	}
}
