package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/san-kum/swingsim/internal/config"
	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/storage"
)

const (
	service = "swingsim-api"
	version = "1.0.0"
)

// Server carries the dependencies shared by the handlers.
type Server struct {
	cfg      *config.Config
	registry *experiment.Registry
	store    *storage.Store
	log      *zap.Logger
	started  time.Time
}

// NewServer builds a Server. A nil store disables saving and the runs
// endpoints answer with empty lists.
func NewServer(cfg *config.Config, registry *experiment.Registry, store *storage.Store, log *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		registry: registry,
		store:    store,
		log:      log,
		started:  time.Now(),
	}
}

// NewRouter returns a gin engine with all routes installed.
func NewRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(s.log), gin.Recovery())
	SetupRoutes(router, s)
	return router
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, s *Server) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.HealthCheck)
		v1.GET("/presets", s.ListPresets)
		v1.GET("/integrators", s.ListIntegrators)
		v1.POST("/simulate", s.Simulate)

		runs := v1.Group("/runs")
		{
			runs.GET("", s.ListRuns)
			runs.GET("/:id", s.GetRun)
		}
	}
}
