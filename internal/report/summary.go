package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/metrics"
	"github.com/san-kum/swingsim/internal/sim"
)

func line(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// Verdict is the one-word result of a delivery.
func Verdict(r *experiment.Report) string {
	switch {
	case !r.Result.Valid():
		return InvalidStyle.Render("INVALID: left the pitch")
	case r.Summary.HitStumps:
		return HitStyle.Render("BOWLED: hit the stumps")
	}
	return MissStyle.Render("MISSED the stumps")
}

// Params renders the release parameters in log header order.
func Params(p sim.Params) string {
	values := p.Values()
	parts := make([]string, len(sim.ParamKeys))
	for i, key := range sim.ParamKeys {
		parts[i] = fmt.Sprintf("%s=%g", key, values[key])
	}
	return Subtle.Render(strings.Join(parts, " "))
}

// Write prints a styled summary of a report.
func Write(w io.Writer, r *experiment.Report) error {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", r.Name, r.Integrator)))
	b.WriteString("\n")
	b.WriteString(Params(r.Params))
	b.WriteString("\n\n")
	b.WriteString(Verdict(r))
	b.WriteString("\n")

	if s := r.Summary; s != nil {
		b.WriteString(summaryLines(s))
	}

	if len(r.Result.Metrics) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(r.Result.Metrics))
		for name := range r.Result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(line(name, fmt.Sprintf("%.4f", r.Result.Metrics[name])))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func summaryLines(s *metrics.Summary) string {
	lines := []string{
		line("final position", fmt.Sprintf("x=%.3f y=%.3f z=%.3f", s.FinalX, s.FinalY, s.FinalZ)),
	}
	if s.Bounced {
		lines = append(lines, line("pitched at", fmt.Sprintf("x=%.3f z=%.3f", s.BounceX, s.BounceZ)))
	} else {
		lines = append(lines, line("pitched at", "did not bounce"))
	}
	lines = append(lines,
		line("max height after", fmt.Sprintf("%.3f m", s.MaxHeightAfterBounce)),
		line("swing", fmt.Sprintf("%+.3f m", s.SwingDistance)),
		line("termination", s.Reason.String()),
		line("samples", fmt.Sprintf("%d", s.Samples)),
	)
	return strings.Join(lines, "\n") + "\n"
}
