package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/game").Subrouter()
	api.HandleFunc("/create-room", s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/join-room", s.JoinRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/leave-room", s.LeaveRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/ready", s.ReadyHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/start-game", s.StartGameHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/submit-guess", s.SubmitGuessHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/time-expired", s.TimeExpiredHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/next-round", s.NextRoundHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/cleanup-rooms", s.CleanupRoomsHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}", s.RoomStateHandler).Methods(http.MethodGet)
	api.HandleFunc("/random-photo", s.RandomPhotoHandler).Methods(http.MethodGet)
	api.HandleFunc("/room-stats", s.RoomStatsHandler).Methods(http.MethodGet)

	r.Handle("/ws/{roomId}", s.ws)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	wildcard := len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case wildcard:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
