package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/san-kum/swingsim/internal/config"
	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/sim"
	"github.com/san-kum/swingsim/internal/storage"
)

// SimulateRequest selects a delivery by preset, by explicit params, or
// falls back to the configured delivery. Params win over Preset.
type SimulateRequest struct {
	Name       string      `json:"name"`
	Preset     string      `json:"preset"`
	Params     *sim.Params `json:"params"`
	Integrator string      `json:"integrator"`
	Save       bool        `json:"save"`
}

// HealthCheck returns server health status
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": service,
		"version": version,
		"uptime":  time.Since(s.started).String(),
	})
}

func (s *Server) ListPresets(c *gin.Context) {
	presets := make([]gin.H, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		presets = append(presets, gin.H{"name": name, "params": p})
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets, "limits": config.Limits})
}

func (s *Server) ListIntegrators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"integrators": s.registry.ListIntegrators(),
		"default":     s.cfg.Integrator,
	})
}

// Simulate runs one delivery. A delivery that leaves the pitch sideways is
// answered with 422 and no samples.
func (s *Server) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	params := s.cfg.Delivery
	name := "delivery"
	if req.Preset != "" {
		p, ok := config.GetPreset(req.Preset)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preset: " + req.Preset})
			return
		}
		params, name = p, req.Preset
	}
	if req.Params != nil {
		params = *req.Params
	}
	if req.Name != "" {
		name = req.Name
	}
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integrator := req.Integrator
	if integrator == "" {
		integrator = s.cfg.Integrator
	}
	if _, err := s.registry.GetIntegrator(integrator); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp := experiment.New(experiment.Config{
		Name:       name,
		Integrator: integrator,
		Params:     params,
		Sim:        s.cfg.SimConfig(),
		Ball:       s.cfg.Ball(),
	}, s.registry)

	report, err := exp.Run(c.Request.Context())
	if err != nil {
		s.log.Error("simulation failed", zap.String("delivery", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !report.Result.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"outcome": report.Result.Outcome,
			"reason":  report.Result.Reason,
			"error":   sim.ErrInvalidTrajectory.Error(),
		})
		return
	}

	data, err := storage.FromReport(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"outcome":  report.Result.Outcome,
		"report":   data,
		"warnings": config.CheckLimits(params),
	}
	if req.Save && s.store != nil {
		id, err := s.store.Save(report)
		if err != nil {
			s.log.Error("saving run failed", zap.String("delivery", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save run"})
			return
		}
		s.log.Info("saved run", zap.String("run_id", id))
		resp["run_id"] = id
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []storage.RunMetadata{}})
		return
	}
	runs, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) GetRun(c *gin.Context) {
	id := c.Param("id")
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found: " + id})
		return
	}

	meta, err := s.store.Load(id)
	if err == nil {
		var traj *sim.Trajectory
		if _, traj, err = s.store.LoadLog(id); err == nil {
			c.JSON(http.StatusOK, storage.FromRun(meta, traj))
			return
		}
	}

	if errors.Is(err, storage.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found: " + id})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
