// Package export renders trajectories as SVG images.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

var ErrEmpty = errors.New("export: nothing to draw")

var elementColors = map[string]string{
	"H":  "#ffffff",
	"C":  "#909090",
	"N":  "#3050f8",
	"O":  "#ff0d0d",
	"S":  "#ffff30",
	"Ne": "#b3e3f5",
	"Ar": "#80d1e3",
	"Kr": "#5cb8d1",
	"Xe": "#429eb0",
}

func elementColor(symbol string) string {
	if c, ok := elementColors[symbol]; ok {
		return c
	}
	return "#ff1493"
}

// view maps nm coordinates in the xy plane onto a square image.
type view struct {
	minX, minY float64
	scale      float64
	size       int
}

func newView(points [][]engine.Vec3, size int) view {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, frame := range points {
		for _, p := range frame {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	// Add padding
	pad := span * 0.15
	return view{minX: minX - pad, minY: minY - pad, scale: float64(size) / (span + 2*pad), size: size}
}

func (v view) xy(p engine.Vec3) (float64, float64) {
	return (p[0] - v.minX) * v.scale, float64(v.size) - (p[1]-v.minY)*v.scale
}

func header(sb *strings.Builder, size int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)
}

// FrameSVG draws one frame projected onto the xy plane: bonds as lines,
// atoms as discs sized by covalent radius.
func FrameSVG(w io.Writer, m *mol.Molecule, f trajectory.Frame, size int) error {
	if len(f.Positions) == 0 || len(f.Positions) != m.NumAtoms() {
		return fmt.Errorf("%w: frame has %d positions for %d atoms", ErrEmpty, len(f.Positions), m.NumAtoms())
	}
	v := newView([][]engine.Vec3{f.Positions}, size)

	var sb strings.Builder
	header(&sb, size)
	sb.WriteString(`<g stroke="#666688" stroke-width="2">` + "\n")
	for _, b := range m.Bonds {
		x1, y1 := v.xy(f.Positions[b.A])
		x2, y2 := v.xy(f.Positions[b.B])
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n<g>\n")
	for i, a := range m.Atoms {
		r, ok := mol.CovalentRadius(a.Element)
		if !ok {
			r = 0.07
		}
		x, y := v.xy(f.Positions[i])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>`+"\n",
			x, y, math.Max(r*v.scale*0.5, 1.5), elementColor(a.Element), a.Name)
	}
	fmt.Fprintf(&sb, "</g>\n<text x=\"8\" y=\"18\" fill=\"#888899\" font-family=\"monospace\" font-size=\"12\">%s  t=%s</text>\n</svg>\n", m.Name, f.Time)

	_, err := io.WriteString(w, sb.String())
	return err
}

// TraceSVG draws the path of every atom across the trajectory.
func TraceSVG(w io.Writer, traj *trajectory.Trajectory, size int) error {
	if traj.Len() < 2 {
		return fmt.Errorf("%w: %d frames", ErrEmpty, traj.Len())
	}
	points := make([][]engine.Vec3, traj.Len())
	for i, f := range traj.Frames {
		points[i] = f.Positions
	}
	v := newView(points, size)

	var sb strings.Builder
	header(&sb, size)
	for atom, a := range traj.Mol.Atoms {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, elementColor(a.Element))
		for i, f := range traj.Frames {
			if atom >= len(f.Positions) {
				continue
			}
			x, y := v.xy(f.Positions[atom])
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString(`"/>` + "\n")
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
