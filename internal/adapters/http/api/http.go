// Package api wires the REST surface over the store, the engines and the
// event bus.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/internal/adapters/ws"
	"github.com/rizeos/workforce/internal/domain/assign"
	"github.com/rizeos/workforce/internal/events"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Server carries the handlers' shared dependencies.
type Server struct {
	store   *repository.Store
	bus     *events.Bus
	assign  *assign.Engine
	gateway *ws.Gateway
	secret  []byte

	defaultPageSize int
	maxPageSize     int
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithPageSizes bounds list pagination.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(s *Server) {
		if defaultSize > 0 && maxSize >= defaultSize {
			s.defaultPageSize = defaultSize
			s.maxPageSize = maxSize
		}
	}
}

// NewServer creates the API server.
func NewServer(store *repository.Store, bus *events.Bus, assignEngine *assign.Engine, gateway *ws.Gateway, secret []byte, opts ...Option) *Server {
	s := &Server{
		store:           store,
		bus:             bus,
		assign:          assignEngine,
		gateway:         gateway,
		secret:          secret,
		defaultPageSize: 10,
		maxPageSize:     100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to the engine.
func (s *Server) Register(r *gin.Engine) {
	r.Use(MetricsMiddleware())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))
	r.GET("/ws", gin.WrapF(s.gateway.HandleConnection))

	authed := r.Group("/api", AuthMiddleware(s.secret))
	{
		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks", s.handleListTasks)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PATCH("/tasks/:id", s.handleUpdateTask)
		authed.PATCH("/tasks/:id/status", s.handleUpdateTaskStatus)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)

		authed.POST("/employees", s.handleCreateEmployee)
		authed.GET("/employees", s.handleListEmployees)
		authed.GET("/employees/:id", s.handleGetEmployee)

		authed.POST("/ai/smart-assign", s.handleSmartAssign)
		authed.GET("/ai/scores", s.handleScores)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "workforce API is running"})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
