package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const timeoutMessage = "request processing exceeded the allowed time limit"

// RequestTimeout sets a context deadline on each request. When the deadline
// passes before the handler returns, the client receives a 504 with an error
// body. Handlers should honour the request context so that upstream calls and
// classification stop early.
//
// The handler runs behind a guarded writer: once the 504 has been sent, its
// late writes are dropped. The middleware still waits for the handler to
// return so the echo context is not recycled while it is in use.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			res := c.Response()
			orig := res.Writer
			tw := newTimeoutWriter(orig)
			res.Writer = tw
			defer func() { res.Writer = orig }()

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			var err error
			select {
			case err = <-done:
				if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return err
				}
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					<-done
					return ctx.Err()
				}
			}

			n, sent := tw.timeout()
			if err == nil {
				<-done
			}
			if sent {
				res.Status = http.StatusGatewayTimeout
				res.Size = int64(n)
				res.Committed = true
			}
			return nil
		}
	}
}

// timeoutWriter keeps the handler's headers apart from the real ones until
// it writes a status, and drops everything once the 504 has gone out.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, h: make(http.Header)}
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

func (tw *timeoutWriter) Flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// timeout sends the 504 unless the handler already wrote a status, and
// blocks all later writes either way.
func (tw *timeoutWriter) timeout() (int, bool) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	if tw.wroteHeader {
		return 0, false
	}

	body, _ := json.Marshal(ErrorBody{Error: timeoutMessage})
	tw.w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	n, _ := tw.w.Write(body)
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, true
}
