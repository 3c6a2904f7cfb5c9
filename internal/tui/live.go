package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/mol"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is an engine reporter that draws the molecule projected onto
// the xy plane while it is being integrated.
type LiveRenderer struct {
	w         io.Writer
	mol       *mol.Molecule
	interval  int
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	// extent is the half-width of the view in nm, fixed by the first frame.
	extent float64
}

// NewLiveRenderer reports every interval steps and redraws at most
// frameRate times per second. A non-positive frameRate redraws on every
// report.
func NewLiveRenderer(w io.Writer, m *mol.Molecule, interval, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		w:         w,
		mol:       m,
		interval:  max(interval, 1),
		frameRate: frameRate,
		canvas:    canvas,
	}
}

func (r *LiveRenderer) Interval() int { return r.interval }

func (r *LiveRenderer) Report(_ *engine.Simulation, st engine.State) error {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return nil
		}
		r.lastFrame = time.Now()
	}
	r.clear()
	r.draw(st.Positions)
	return r.render(st)
}

func (r *LiveRenderer) Start() error {
	_, err := io.WriteString(r.w, hideCursor)
	return err
}

func (r *LiveRenderer) Stop() error {
	_, err := io.WriteString(r.w, showCursor)
	return err
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// project maps positions onto canvas cells around their centroid.
func (r *LiveRenderer) project(pos []engine.Vec3) [][2]int {
	var cx, cy float64
	for _, p := range pos {
		cx += p[0]
		cy += p[1]
	}
	n := float64(max(len(pos), 1))
	cx, cy = cx/n, cy/n

	if r.extent == 0 {
		for _, p := range pos {
			r.extent = math.Max(r.extent, math.Max(math.Abs(p[0]-cx), math.Abs(p[1]-cy)))
		}
		r.extent = math.Max(1.5*r.extent, 0.5)
	}

	cells := make([][2]int, len(pos))
	for i, p := range pos {
		col := width/2 + int(math.Round((p[0]-cx)/r.extent*float64(width/2-1)))
		row := height/2 - int(math.Round((p[1]-cy)/r.extent*float64(height/2-1)))
		cells[i] = [2]int{col, row}
	}
	return cells
}

func (r *LiveRenderer) draw(pos []engine.Vec3) {
	cells := r.project(pos)
	for _, b := range r.mol.Bonds {
		if b.A >= len(cells) || b.B >= len(cells) {
			continue
		}
		a, c := cells[b.A], cells[b.B]
		r.line(a[0], a[1], c[0], c[1], '.')
	}
	for i, c := range cells {
		sym := 'o'
		if i < len(r.mol.Atoms) && r.mol.Atoms[i].Element != "" {
			sym = []rune(r.mol.Atoms[i].Element)[0]
		}
		r.set(c[0], c[1], sym)
	}
}

func (r *LiveRenderer) render(st engine.State) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  t=%s  step %d\n", r.mol.Name, units.Time(st.Time), st.Step)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&b, "  PE=%.3f kJ/mol  KE=%.3f kJ/mol\n", st.PotentialEnergy, st.KineticEnergy)

	_, err := io.WriteString(r.w, b.String())
	return err
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
