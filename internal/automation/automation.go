package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swingsim/internal/config"
	"github.com/san-kum/swingsim/internal/dynamo"
	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/metrics"
	"github.com/san-kum/swingsim/internal/sim"
	"github.com/san-kum/swingsim/internal/storage"
)

// Scenario is a scripted list of deliveries.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Deliveries  []Delivery `yaml:"deliveries"`
}

// Delivery starts from a preset (or the configured delivery when Preset is
// empty) and applies Overrides by parameter key. Physics overrides are ball
// parameters such as drag or air_density.
type Delivery struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Overrides  map[string]float64 `yaml:"delivery"`
	Physics    map[string]float64 `yaml:"physics"`
	Save       bool               `yaml:"save"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Runner holds what every delivery of a scenario shares. Store may be nil,
// in which case save flags are ignored.
type Runner struct {
	Config   *config.Config
	Registry *experiment.Registry
	Store    *storage.Store
	Logger   *zap.Logger
}

// Outcome is one executed delivery. RunID is empty unless it was saved.
type Outcome struct {
	Delivery Delivery
	Report   *experiment.Report
	RunID    string
}

// RunScenario executes all deliveries in order and stops at the first
// error. Invalid deliveries are reported, not treated as errors.
func RunScenario(ctx context.Context, scenario *Scenario, r *Runner) ([]Outcome, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scenario", scenario.Name))

	outcomes := make([]Outcome, 0, len(scenario.Deliveries))

	for i, d := range scenario.Deliveries {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("delivery-%d", i+1)
		}

		log.Info("running delivery",
			zap.Int("index", i+1),
			zap.Int("total", len(scenario.Deliveries)),
			zap.String("delivery", label))

		cfg, err := r.experimentConfig(label, d)
		if err != nil {
			return outcomes, fmt.Errorf("delivery %d (%s): %w", i+1, label, err)
		}

		report, err := experiment.New(cfg, r.Registry).Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("delivery %d (%s) run: %w", i+1, label, err)
		}

		out := Outcome{Delivery: d, Report: report}
		if !report.Result.Valid() {
			log.Warn("delivery left the pitch", zap.String("delivery", label))
		} else if d.Save && r.Store != nil {
			id, err := r.Store.Save(report)
			if err != nil {
				return outcomes, fmt.Errorf("delivery %d (%s) save: %w", i+1, label, err)
			}
			out.RunID = id
			log.Info("saved run", zap.String("run_id", id))
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

func (r *Runner) experimentConfig(name string, d Delivery) (experiment.Config, error) {
	base := r.Config
	if base == nil {
		base = config.DefaultConfig()
	}

	params := base.Delivery
	if d.Preset != "" {
		p, ok := config.GetPreset(d.Preset)
		if !ok {
			return experiment.Config{}, fmt.Errorf("unknown preset: %s", d.Preset)
		}
		params = p
	}
	if len(d.Overrides) > 0 {
		values := params.Values()
		for k, v := range d.Overrides {
			if _, ok := values[k]; !ok {
				return experiment.Config{}, fmt.Errorf("unknown delivery parameter: %s", k)
			}
			values[k] = v
		}
		var err error
		if params, err = sim.ParamsFromValues(values); err != nil {
			return experiment.Config{}, err
		}
	}

	ball := base.Ball()
	if err := applyParams(&ball, d.Physics); err != nil {
		return experiment.Config{}, err
	}

	integrator := d.Integrator
	if integrator == "" {
		integrator = base.Integrator
	}

	return experiment.Config{
		Name:       name,
		Integrator: integrator,
		Params:     params,
		Sim:        base.SimConfig(),
		Ball:       ball,
	}, nil
}

// SweepResult is one point of a parameter sweep. ReachesHalfway marks the
// points usable as recorded deliveries.
type SweepResult struct {
	Value          float64
	Valid          bool
	ReachesHalfway bool
	Summary        *metrics.Summary
}

// ParameterSweep varies one delivery parameter over a range, holding the
// rest of Base fixed.
type ParameterSweep struct {
	Base      sim.Params
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// RunSweep executes a parameter sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, r *Runner) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if _, ok := sweep.Base.Values()[sweep.ParamName]; !ok {
		return nil, fmt.Errorf("unknown delivery parameter: %s", sweep.ParamName)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg, err := r.experimentConfig(fmt.Sprintf("%s=%g", sweep.ParamName, paramVal), Delivery{})
		if err != nil {
			return nil, err
		}
		cfg.Params = mergeParam(sweep.Base, sweep.ParamName, paramVal)

		report, err := experiment.New(cfg, r.Registry).Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Value:          paramVal,
			Valid:          report.Result.Valid(),
			ReachesHalfway: metrics.ReachesHalfway(report.Result.Trajectory, cfg.Sim.Pitch),
			Summary:        report.Summary,
		})
	}

	return results, nil
}

// applyParams sets overrides on c in name order, rejecting names c does not
// expose before changing anything.
func applyParams(c dynamo.Configurable, overrides map[string]float64) error {
	known := c.GetParams()
	names := make([]string, 0, len(overrides))
	for k := range overrides {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, k)
		}
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := c.SetParam(k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

func mergeParam(base sim.Params, key string, value float64) sim.Params {
	values := base.Values()
	values[key] = value
	p, _ := sim.ParamsFromValues(values)
	return p
}
