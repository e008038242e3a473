package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// MaxBodyBytes is the largest request body the server reads.
const MaxBodyBytes = 1 << 20

type handlerFunc func(r *http.Request, logger *log.Entry) (status int, body interface{})

// route is the registration record of one method+path pairing.
type route struct {
	method string
	path   string
	handle handlerFunc

	// Successful invocations. Nil for routes that are not metered, which
	// stats reports as zero.
	calls *atomic.Uint64
}

func metered() *atomic.Uint64 {
	return new(atomic.Uint64)
}

func (s *Server) newRoutes() []*route {
	return []*route{
		{method: http.MethodGet, path: "/version", handle: s.version, calls: metered()},
		{method: http.MethodPost, path: "/posts/", handle: s.createPost, calls: metered()},
		{method: http.MethodGet, path: "/posts/{post_id}", handle: s.getPost, calls: metered()},
		{method: http.MethodPut, path: "/posts/{post_id}", handle: s.updatePost, calls: metered()},
		{method: http.MethodDelete, path: "/posts/{post_id}", handle: s.deletePost, calls: metered()},
		{method: http.MethodGet, path: "/stats", handle: s.stats},
	}
}

func (s *Server) newMux() *http.ServeMux {
	mux := http.NewServeMux()
	redirected := make(map[string]bool)
	for _, rt := range s.routes {
		mux.HandleFunc(rt.method+" "+muxPattern(rt.path), s.serve(rt))
		// Requests missing the trailing slash are sent to the slashed path,
		// keeping the method and body.
		if bare := strings.TrimSuffix(rt.path, "/"); bare != rt.path && bare != "" {
			pattern := rt.method + " " + bare
			if !redirected[pattern] {
				mux.Handle(pattern, http.RedirectHandler(rt.path, http.StatusTemporaryRedirect))
				redirected[pattern] = true
			}
		}
	}
	return mux
}

// muxPattern anchors paths with a trailing slash, which http.ServeMux would
// otherwise treat as subtrees.
func muxPattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + "{$}"
	}
	return path
}

func (s *Server) serve(rt *route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithFields(log.Fields{
			"op":   r.Method,
			"path": r.URL.Path,
		})
		status, body := func() (int, interface{}) {
			if s.limiter != nil {
				if err := s.limiter.Wait(r.Context()); err != nil {
					logger.WithField("err", err).Warn("Gave up waiting for the rate limiter")
					return http.StatusServiceUnavailable, detailResponse{Detail: http.StatusText(http.StatusServiceUnavailable)}
				}
			}
			if r.Body != nil {
				b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
				if err != nil {
					var tooLarge *http.MaxBytesError
					if errors.As(err, &tooLarge) {
						logger.WithField("err", err).Debug("Request body too large")
						return http.StatusRequestEntityTooLarge, detailResponse{Detail: http.StatusText(http.StatusRequestEntityTooLarge)}
					}
					logger.WithField("err", err).Warn("Could not read request body")
					return http.StatusBadRequest, detailResponse{Detail: http.StatusText(http.StatusBadRequest)}
				}
				r.Body = io.NopCloser(bytes.NewReader(b))
			}
			return rt.handle(r, logger)
		}()
		if rt.calls != nil && status >= 200 && status < 300 {
			rt.calls.Add(1)
		}
		logger.WithField("status", status).Debug("Served")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.WithField("err", err).Error("Failed writing response")
		}
	}
}

// Stats returns, for every registered route path, the number of successful
// invocations since the server was created. Routes sharing a path (e.g., PUT
// and DELETE on a post) add up under that path.
func (s *Server) Stats() map[string]uint64 {
	stats := make(map[string]uint64)
	for _, rt := range s.routes {
		var n uint64
		if rt.calls != nil {
			n = rt.calls.Load()
		}
		stats[rt.path] += n
	}
	return stats
}
