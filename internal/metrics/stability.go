package metrics

import (
	"math"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/trajectory"
)

// DefaultStabilityBound is the coordinate magnitude in nm beyond which a
// frame counts as blown up.
const DefaultStabilityBound = 100.0

// Stability is the fraction of frames whose coordinates are finite and
// within the bound.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f trajectory.Frame) {
	s.samples++
	for _, p := range f.Positions {
		if !p.IsValid() || math.Abs(p[0]) > s.threshold || math.Abs(p[1]) > s.threshold || math.Abs(p[2]) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxDisplacement is the largest distance in nm any atom moved from its
// position in the first frame.
type MaxDisplacement struct {
	name  string
	start []engine.Vec3
	max   float64
}

func NewMaxDisplacement() *MaxDisplacement {
	return &MaxDisplacement{name: "max_displacement"}
}

func (d *MaxDisplacement) Name() string { return d.name }

func (d *MaxDisplacement) Observe(f trajectory.Frame) {
	if d.start == nil {
		d.start = engine.CloneVecs(f.Positions)
		return
	}
	for i, p := range f.Positions {
		if i < len(d.start) {
			d.max = math.Max(d.max, p.Sub(d.start[i]).Norm())
		}
	}
}

func (d *MaxDisplacement) Value() float64 { return d.max }

func (d *MaxDisplacement) Reset() {
	d.start = nil
	d.max = 0
}
