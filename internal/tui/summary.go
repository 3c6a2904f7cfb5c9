package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shiva16/molecular-design-toolkit/internal/storage"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

// Summary renders a saved run as a bordered panel. totals, when present,
// is drawn as a sparkline of the total energy.
func Summary(meta storage.RunMetadata, totals []float64) string {
	var b strings.Builder
	b.WriteString(title.Render(meta.Name) + "  " + dim.Render(meta.ID) + "\n\n")

	row := func(label, value string) {
		b.WriteString(metricLabel.Render(fmt.Sprintf("%-18s", label)) + metricValue.Render(value) + "\n")
	}
	row("molecule", fmt.Sprintf("%s (%d atoms)", meta.Molecule, meta.NumAtoms))
	row("integrator", meta.Integrator)
	row("executor", meta.Executor)
	row("timestep", units.Time(meta.Timestep).String())
	row("duration", units.Time(meta.Duration).String())
	if meta.Temperature > 0 {
		row("bath", fmt.Sprintf("%s @ %.3g/ps", units.Temperature(meta.Temperature), meta.CollisionRate))
	}
	row("frames", fmt.Sprintf("%d", meta.Frames))

	if len(meta.Metrics) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row(name, fmt.Sprintf("%.6g", meta.Metrics[name]))
		}
	}

	if len(totals) > 0 {
		b.WriteString("\n" + metricLabel.Render(fmt.Sprintf("%-18s", "total energy")) + cyan.Render(Sparkline(totals, 40)))
	}
	return panel.Render(strings.TrimRight(b.String(), "\n"))
}
