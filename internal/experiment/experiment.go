package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/swingsim/internal/metrics"
	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

type Config struct {
	Name       string
	Integrator string
	Params     sim.Params
	Sim        sim.Config
	Ball       physics.Ball
}

// DefaultConfig is a named delivery on the standard pitch with the default
// ball and integrator.
func DefaultConfig(name string, p sim.Params) Config {
	return Config{
		Name:       name,
		Integrator: DefaultIntegrator,
		Params:     p,
		Sim:        sim.DefaultConfig(),
		Ball:       physics.NewBall(),
	}
}

// Report is a delivery together with its upright-seam counterfactual.
// Summary is nil when the delivery itself was invalid.
type Report struct {
	Name           string           `json:"name"`
	Integrator     string           `json:"integrator"`
	Params         sim.Params       `json:"params"`
	Result         *sim.Result      `json:"result"`
	Counterfactual *sim.Result      `json:"-"`
	Summary        *metrics.Summary `json:"summary,omitempty"`
}

type Experiment struct {
	cfg      Config
	registry *Registry
}

func New(cfg Config, registry *Registry) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if cfg.Integrator == "" {
		cfg.Integrator = DefaultIntegrator
	}
	return &Experiment{cfg: cfg, registry: registry}
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) simulator(withMetrics bool) (*sim.Simulator, error) {
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	s := sim.New(e.cfg.Ball, integ, e.cfg.Sim)
	if withMetrics {
		for _, m := range e.registry.DefaultMetrics(e.cfg.Ball) {
			s.AddMetric(m)
		}
	}
	return s, nil
}

// Run simulates the delivery and, concurrently, the same delivery with the
// seam upright. An invalid delivery yields a Report without a Summary.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	delivery, err := e.simulator(true)
	if err != nil {
		return nil, err
	}
	straight, err := e.simulator(false)
	if err != nil {
		return nil, err
	}

	var (
		wg             sync.WaitGroup
		result, cf     *sim.Result
		runErr, cfErr  error
		counterfactual = e.cfg.Params.WithSeam(0)
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result, runErr = delivery.Run(e.cfg.Params)
	}()
	go func() {
		defer wg.Done()
		cf, cfErr = straight.Run(counterfactual)
	}()
	wg.Wait()

	if runErr != nil {
		return nil, fmt.Errorf("delivery %s: %w", e.cfg.Name, runErr)
	}
	if cfErr != nil {
		return nil, fmt.Errorf("delivery %s, upright seam: %w", e.cfg.Name, cfErr)
	}

	report := &Report{
		Name:           e.cfg.Name,
		Integrator:     e.cfg.Integrator,
		Params:         e.cfg.Params,
		Result:         result,
		Counterfactual: cf,
	}
	if result.Valid() {
		summary, err := metrics.Summarize(result, cf, e.cfg.Sim.Pitch)
		if err != nil {
			return nil, err
		}
		report.Summary = &summary
	}
	return report, nil
}
