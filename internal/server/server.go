package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scythe504/photoguessr-backend/internal/game"
	"github.com/scythe504/photoguessr-backend/internal/websocket"
)

type Server struct {
	port           string
	game           *game.Manager
	photos         game.PhotoStore
	ws             *websocket.Handler
	gatherer       prometheus.Gatherer
	allowedOrigins []string
	roomIdle       time.Duration
}

type Config struct {
	Port           string
	AllowedOrigins []string
	RoomIdle       time.Duration
}

func New(cfg Config, manager *game.Manager, photos game.PhotoStore, hub *websocket.Hub, gatherer prometheus.Gatherer) *Server {
	return &Server{
		port:           cfg.Port,
		game:           manager,
		photos:         photos,
		ws:             websocket.NewHandler(hub, manager, cfg.AllowedOrigins),
		gatherer:       gatherer,
		allowedOrigins: cfg.AllowedOrigins,
		roomIdle:       cfg.RoomIdle,
	}
}

// HTTPServer wires the routes into an http.Server listening on the port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
