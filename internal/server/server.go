package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintdeck/internal/storage/sqlite"
)

// Server provides the HTTP API the dashboard client talks to.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	events *EventLog
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, events *EventLog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = NewEventLog(0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		events: events,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.PATCH(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
		}

		sprints := api.Group("/sprints")
		{
			sprints.GET("", s.handleListSprints)
			sprints.GET("/current", s.handleCurrentSprint)
		}

		api.GET("/users", s.handleListUsers)

		suggestions := api.Group("/suggestions")
		{
			suggestions.GET("", s.handleListSuggestions)
			suggestions.POST(":id/accept", s.handleAcceptSuggestion)
			suggestions.POST(":id/dismiss", s.handleDismissSuggestion)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", s.handleListNotifications)
			notifications.POST(":id/read", s.handleMarkNotificationRead)
		}

		api.GET("/metrics", s.handleMetrics)
		api.GET("/events", s.handleEvents)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the error and returns a JSON payload. Missing rows map
// to 404 so the client can tell "gone" from "broken".
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		status = http.StatusNotFound
	}
	if err != nil && status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
