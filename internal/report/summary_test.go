package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/sim"
)

func TestWrite(t *testing.T) {
	p := sim.Params{Speed: 35, VerticalAngle: -7.5, SeamAngle: 20, Restitution: 0.7, Friction: 0.8}
	r, err := experiment.New(experiment.DefaultConfig("outswinger", p), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"outswinger", "euler", "seam_angle=20", "MISSED", "pitched at", "end_of_pitch", "speed_loss"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVerdictInvalid(t *testing.T) {
	r := &experiment.Report{Result: &sim.Result{Outcome: sim.OutcomeInvalid}}
	if !strings.Contains(Verdict(r), "INVALID") {
		t.Errorf("verdict = %q", Verdict(r))
	}

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "final position") {
		t.Error("invalid report should not print a summary")
	}
}
