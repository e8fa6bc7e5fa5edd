// Package remote serves a document store over HTTP and reads it back.
//
// Documents are addressed as /documents/{collection}/{id}. GET returns the
// document as a JSON object, PUT replaces it and DELETE removes it. A missing
// document is reported with status 404.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"
	"github.com/nasdf/campus/schema"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Backend is a store that can be served.
type Backend interface {
	ref.Store
	ref.Writer
}

// Deleter is implemented by backends that can remove documents.
type Deleter interface {
	Delete(ctx context.Context, collection, id string) error
}

// HandlerOption configures a handler.
type HandlerOption func(s *server)

// WithLogger sets the logger used to report requests and failures.
func WithLogger(log *zap.Logger) HandlerOption {
	return func(s *server) {
		if log != nil {
			s.log = log
		}
	}
}

type server struct {
	store Backend
	log   *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns an http.Handler serving documents from the given store.
func Handler(store Backend, opts ...HandlerOption) http.Handler {
	s := &server{
		store: store,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/documents/{collection}/{id}", s.get)
	r.Put("/documents/{collection}/{id}", s.put)
	r.Delete("/documents/{collection}/{id}", s.delete)
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *server) get(w http.ResponseWriter, r *http.Request) {
	collection, id := documentKey(r)
	doc, found, err := s.store.Get(r.Context(), collection, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: ref.ErrNotFound.Error()})
		return
	}
	if doc == nil {
		doc = document.Document{}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *server) put(w http.ResponseWriter, r *http.Request) {
	collection, id := documentKey(r)
	doc, err := decodeDocument(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.store.Set(r.Context(), collection, id, doc); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) delete(w http.ResponseWriter, r *http.Request) {
	d, ok := s.store.(Deleter)
	if !ok {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "delete is not supported"})
		return
	}
	collection, id := documentKey(r)
	if err := d.Delete(r.Context(), collection, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// documentKey returns the collection and id of the request path.
func documentKey(r *http.Request) (string, string) {
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	// params are taken from the raw path when it holds escaped slashes
	if r.URL.RawPath != "" {
		if v, err := url.PathUnescape(collection); err == nil {
			collection = v
		}
		if v, err := url.PathUnescape(id); err == nil {
			id = v
		}
	}
	return collection, id
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, schema.ErrUnknownCollection),
		errors.Is(err, schema.ErrUnknownField),
		errors.Is(err, schema.ErrInvalidValue):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(out)
}
