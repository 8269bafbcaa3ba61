package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/physics"
	"github.com/san-kum/swingsim/internal/sim"
)

func physicsBall() physics.Ball { return physics.NewBall() }

func runReport(t *testing.T, name string, p sim.Params) *experiment.Report {
	t.Helper()
	report, err := experiment.New(experiment.DefaultConfig(name, p), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("experiment failed: %v", err)
	}
	return report
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	p := sim.Params{Speed: 35, VerticalAngle: -7.5, SeamAngle: -20, Restitution: 0.7, Friction: 0.8}
	report := runReport(t, "in swinger", p)

	runID, err := st.Save(report)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "in swinger" || meta.Integrator != "euler" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Params != p {
		t.Errorf("params = %+v, want %+v", meta.Params, p)
	}
	if meta.Summary.FinalZ != report.Summary.FinalZ || meta.Reason != sim.ReasonEndOfPitch {
		t.Errorf("summary not persisted: %+v", meta.Summary)
	}
	if meta.Samples != report.Result.Trajectory.Len() {
		t.Errorf("samples = %d, want %d", meta.Samples, report.Result.Trajectory.Len())
	}

	values, traj, err := st.LoadLog(runID)
	if err != nil {
		t.Fatalf("load log failed: %v", err)
	}
	if values[sim.KeySeamAngle] != -20 {
		t.Errorf("header seam = %v", values[sim.KeySeamAngle])
	}
	if traj.Final() != report.Result.Trajectory.Final() {
		t.Error("trajectory did not survive the round trip")
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	st := New(t.TempDir())
	p := sim.Params{Speed: 35, VerticalAngle: -7.5, HorizontalAngle: 80, Restitution: 0.7, Friction: 0.8}

	_, err := st.Save(runReport(t, "wide", p))
	if !errors.Is(err, sim.ErrInvalidTrajectory) {
		t.Errorf("expected ErrInvalidTrajectory, got %v", err)
	}
	runs, _ := st.List()
	if len(runs) != 0 {
		t.Errorf("invalid delivery should not be stored, got %d runs", len(runs))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	p := sim.Params{Speed: 35, VerticalAngle: -7.5, Restitution: 0.7, Friction: 0.8}

	first, err := st.Save(runReport(t, "a", p))
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(runReport(t, "b", p))
	if err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != first || runs[1].ID != second {
		t.Errorf("unexpected runs %v", runs)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/nope").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List on missing dir = %v, %v", runs, err)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"missing_1", "../etc", ""} {
		if _, err := st.Load(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("Load(%q) = %v, want ErrRunNotFound", id, err)
		}
		if _, _, err := st.LoadLog(id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("LoadLog(%q) = %v, want ErrRunNotFound", id, err)
		}
	}
}

func TestExportJSON(t *testing.T) {
	p := sim.Params{Speed: 35, VerticalAngle: -7.5, SeamAngle: 20, Restitution: 0.7, Friction: 0.8}
	report := runReport(t, "out", p)

	data, err := FromReport(report)
	if err != nil {
		t.Fatalf("FromReport: %v", err)
	}
	var buf bytes.Buffer
	if err := ExportJSON(&buf, data); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var decoded struct {
		Name    string         `json:"name"`
		Reason  string         `json:"termination"`
		Params  sim.Params     `json:"params"`
		Samples []sim.Sample   `json:"samples"`
		Summary map[string]any `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Name != "out" || decoded.Reason != "end_of_pitch" || decoded.Params != p {
		t.Errorf("unexpected export header: %+v", decoded)
	}
	if len(decoded.Samples) != report.Result.Trajectory.Len() {
		t.Errorf("samples = %d, want %d", len(decoded.Samples), report.Result.Trajectory.Len())
	}
	if _, ok := decoded.Summary["hit_stumps"]; !ok {
		t.Error("summary missing hit_stumps")
	}

	invalid := &experiment.Report{Result: &sim.Result{Outcome: sim.OutcomeInvalid}}
	if _, err := FromReport(invalid); !errors.Is(err, sim.ErrInvalidTrajectory) {
		t.Errorf("expected ErrInvalidTrajectory, got %v", err)
	}
}
