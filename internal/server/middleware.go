package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// responseCapture records the status code written by a handler so the
// completion log can report it.
type responseCapture struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *responseCapture) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCapture) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.New().String()
}

// withLogging tags every request with an ID, logs start and completion,
// and recovers panics into a 500 with the stack logged.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r)

		logger := s.log.WithFields(logrus.Fields{
			"request-id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		logger.Debug("request started")

		w.Header().Set("X-Request-Id", id)
		wrapped := &responseCapture{ResponseWriter: w}

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.WithFields(logrus.Fields{
					"panic": recovered,
					"stack": string(debug.Stack()),
				}).Error("panic recovered in request handler")
				if !wrapped.statusWritten {
					http.Error(wrapped, "internal server error", http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(wrapped, r)

		logger.WithFields(logrus.Fields{
			"status":   wrapped.Status(),
			"duration": time.Since(start),
		}).Info("request completed")
	})
}
