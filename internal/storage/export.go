package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/metrics"
	"github.com/san-kum/swingsim/internal/sim"
)

type ExportData struct {
	Name       string             `json:"name"`
	Integrator string             `json:"integrator"`
	Params     sim.Params         `json:"params"`
	Dt         float64            `json:"dt"`
	Reason     sim.Reason         `json:"termination"`
	Summary    metrics.Summary    `json:"summary"`
	Metrics    map[string]float64 `json:"metrics"`
	Samples    *sim.Trajectory    `json:"samples"`
}

// FromReport builds export data from a valid experiment report.
func FromReport(r *experiment.Report) (*ExportData, error) {
	if !r.Result.Valid() || r.Summary == nil {
		return nil, sim.ErrInvalidTrajectory
	}
	return &ExportData{
		Name:       r.Name,
		Integrator: r.Integrator,
		Params:     r.Params,
		Dt:         r.Result.Trajectory.Dt(),
		Reason:     r.Result.Reason,
		Summary:    *r.Summary,
		Metrics:    r.Result.Metrics,
		Samples:    r.Result.Trajectory,
	}, nil
}

// FromRun builds export data from a stored run.
func FromRun(meta *RunMetadata, traj *sim.Trajectory) *ExportData {
	return &ExportData{
		Name:       meta.Name,
		Integrator: meta.Integrator,
		Params:     meta.Params,
		Dt:         meta.Dt,
		Reason:     meta.Reason,
		Summary:    meta.Summary,
		Metrics:    meta.Metrics,
		Samples:    traj,
	}
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
