package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

const (
	DefaultIntegrator = "euler"
	DefaultPreset     = "straight"
)

type Config struct {
	Integrator string           `yaml:"integrator"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Pitch      physics.Pitch    `yaml:"pitch"`
	Delivery   sim.Params       `yaml:"delivery"`
}

type PhysicsConfig struct {
	Mass        float64 `yaml:"mass"`
	Radius      float64 `yaml:"radius"`
	DragCoeff   float64 `yaml:"drag_coeff"`
	SeamLiftMax float64 `yaml:"seam_lift_max"`
	Gravity     float64 `yaml:"gravity"`
	AirDensity  float64 `yaml:"air_density"`
}

type SimulationConfig struct {
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	ReleaseHeight float64 `yaml:"release_height"`
	ReleaseOffset float64 `yaml:"release_offset"`
	SettleSpeed   float64 `yaml:"settle_speed"`
	Floor         float64 `yaml:"floor"`
	Overrun       float64 `yaml:"overrun"`
}

func DefaultConfig() *Config {
	ball := physics.NewBall()
	simCfg := sim.DefaultConfig()
	delivery, _ := GetPreset(DefaultPreset)

	return &Config{
		Integrator: DefaultIntegrator,
		Physics: PhysicsConfig{
			Mass:        ball.Mass,
			Radius:      ball.Radius,
			DragCoeff:   ball.DragCoeff,
			SeamLiftMax: ball.SeamLiftMax,
			Gravity:     ball.Gravity,
			AirDensity:  ball.AirDensity,
		},
		Simulation: SimulationConfig{
			Dt:            simCfg.Dt,
			Duration:      simCfg.Duration,
			ReleaseHeight: simCfg.ReleaseHeight,
			ReleaseOffset: simCfg.ReleaseOffset,
			SettleSpeed:   simCfg.SettleSpeed,
			Floor:         simCfg.Floor,
			Overrun:       simCfg.Overrun,
		},
		Pitch:    simCfg.Pitch,
		Delivery: delivery,
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Ball() physics.Ball {
	ball := physics.NewBall()
	ball.Mass = c.Physics.Mass
	ball.Radius = c.Physics.Radius
	ball.DragCoeff = c.Physics.DragCoeff
	ball.SeamLiftMax = c.Physics.SeamLiftMax
	ball.Gravity = c.Physics.Gravity
	ball.AirDensity = c.Physics.AirDensity
	return ball
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Simulation.Dt,
		Duration:      c.Simulation.Duration,
		ReleaseHeight: c.Simulation.ReleaseHeight,
		ReleaseOffset: c.Simulation.ReleaseOffset,
		SettleSpeed:   c.Simulation.SettleSpeed,
		Floor:         c.Simulation.Floor,
		Overrun:       c.Simulation.Overrun,
		Pitch:         c.Pitch,
	}
}
