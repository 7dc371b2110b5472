package server

import (
	"log"
	"net/http"

	"github.com/gigscope/gigscope/pkg/storage"
)

// Server exposes the persisted tour data as a small JSON API for the
// presentation layer. Rendering itself lives entirely in the clients.
type Server struct {
	DB       *storage.DB
	Tour     string
	Username string
	Password string
}

func New(db *storage.DB, tour, user, pass string) *Server {
	return &Server{
		DB:       db,
		Tour:     tour,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /api/shows", s.basicAuth(s.handleShows))
	mux.HandleFunc("GET /api/show", s.basicAuth(s.handleShow))
	mux.HandleFunc("GET /api/spans", s.basicAuth(s.handleSpans))
	mux.HandleFunc("GET /api/changes", s.basicAuth(s.handleChanges))

	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
