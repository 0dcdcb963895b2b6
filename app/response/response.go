// Package response writes the uniform success and error bodies.
package response

import (
	"context"
	"encoding/json"
	"net/http"

	"quill/app/apperr"

	"go.uber.org/zap"
)

// HeadersSenter is implemented by writers that know whether the response
// has already been started.
type HeadersSenter interface {
	HeadersSent() bool
}

// Writer records the status and whether headers have gone out. Once the
// request context is done (timeout or client gone) it refuses every write.
type Writer struct {
	http.ResponseWriter
	ctx    context.Context
	status int
	sent   bool
}

// Track wraps w for the lifetime of ctx unless it is already tracked.
func Track(ctx context.Context, w http.ResponseWriter) *Writer {
	if tw, ok := w.(*Writer); ok {
		return tw
	}
	return &Writer{ResponseWriter: w, ctx: ctx}
}

func (w *Writer) closed() bool {
	return w.ctx != nil && w.ctx.Err() != nil
}

func (w *Writer) WriteHeader(status int) {
	if w.sent || w.closed() {
		return
	}
	w.status = status
	w.sent = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *Writer) Write(b []byte) (int, error) {
	if w.closed() {
		return 0, http.ErrHandlerTimeout
	}
	if !w.sent {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status, or 200 if nothing was written yet.
func (w *Writer) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *Writer) HeadersSent() bool { return w.sent || w.closed() }

func (w *Writer) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func headersSent(w http.ResponseWriter) bool {
	hs, ok := w.(HeadersSenter)
	return ok && hs.HeadersSent()
}

// Body is a success payload. Keys other than "message" carry resources.
type Body map[string]interface{}

type errorBody struct {
	Error   apperr.Kind `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Responder renders envelopes. In development mode internal error causes
// are included in the message.
type Responder struct {
	log *zap.Logger
	dev bool
}

func NewResponder(log *zap.Logger, dev bool) *Responder {
	return &Responder{log: log, dev: dev}
}

// JSON writes v with status unless headers were already sent.
func (rs *Responder) JSON(w http.ResponseWriter, status int, v interface{}) {
	if headersSent(w) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.log.Warn("encode response", zap.Error(err))
	}
}

// Success writes body with status, defaulting to 200.
func (rs *Responder) Success(w http.ResponseWriter, status int, body Body) {
	if status == 0 {
		status = http.StatusOK
	}
	if body == nil {
		body = Body{}
	}
	rs.JSON(w, status, body)
}

// Error translates err and writes the error envelope.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr == nil {
		return
	}

	msg := appErr.Message
	if !appErr.Operational() {
		rs.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		if rs.dev && appErr.Unwrap() != nil {
			msg = appErr.Unwrap().Error()
		}
	}

	rs.JSON(w, appErr.Status(), errorBody{
		Error:   appErr.Kind,
		Message: msg,
		Details: appErr.Details,
	})
}
