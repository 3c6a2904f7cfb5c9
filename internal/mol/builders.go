package mol

import (
	"fmt"
	"math"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
)

// ArgonCluster places n argon atoms on a simple cubic lattice with the given
// spacing in nm, centered on the origin.
func ArgonCluster(n int, spacing float64) (*Molecule, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mol: cluster needs at least one atom, got %d", n)
	}
	side := int(math.Ceil(math.Cbrt(float64(n))))
	atoms := make([]Atom, 0, n)
	pos := make([]engine.Vec3, 0, n)
	offset := float64(side-1) * spacing / 2
	for i := 0; i < side && len(atoms) < n; i++ {
		for j := 0; j < side && len(atoms) < n; j++ {
			for k := 0; k < side && len(atoms) < n; k++ {
				a, _ := NewAtom(fmt.Sprintf("Ar%d", len(atoms)+1), "Ar")
				atoms = append(atoms, a)
				pos = append(pos, engine.Vec3{
					float64(i)*spacing - offset,
					float64(j)*spacing - offset,
					float64(k)*spacing - offset,
				})
			}
		}
	}
	return New(fmt.Sprintf("argon-%d", n), atoms, nil, pos)
}

// BeadChain builds a planar zig-zag chain of n carbon beads joined by bonds
// of the given length in nm.
func BeadChain(n int, bondLength float64) (*Molecule, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mol: chain needs at least one bead, got %d", n)
	}
	const half = 56 * math.Pi / 180 // half of a tetrahedral-ish bend
	dx := bondLength * math.Sin(half)
	dy := bondLength * math.Cos(half)

	atoms := make([]Atom, n)
	pos := make([]engine.Vec3, n)
	var bonds []Bond
	for i := range atoms {
		atoms[i], _ = NewAtom(fmt.Sprintf("C%d", i+1), "C")
		pos[i] = engine.Vec3{float64(i) * dx, float64(i%2) * dy, 0}
		if i > 0 {
			bonds = append(bonds, Bond{A: i - 1, B: i})
		}
	}
	return New(fmt.Sprintf("chain-%d", n), atoms, bonds, pos)
}
