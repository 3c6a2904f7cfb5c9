package mol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shiva16/molecular-design-toolkit/internal/engine"
	"github.com/shiva16/molecular-design-toolkit/internal/units"
)

var ErrXYZ = errors.New("mol: malformed xyz")

// bondTolerance scales summed covalent radii when inferring bonds from
// coordinates.
const bondTolerance = 1.2

// ReadXYZ parses a single-frame XYZ file. Coordinates on disk are in
// angstrom. Bonds are inferred from covalent radii.
func ReadXYZ(r io.Reader) (*Molecule, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing atom count", ErrXYZ)
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: bad atom count %q", ErrXYZ, sc.Text())
	}
	name := ""
	if sc.Scan() {
		name = strings.TrimSpace(sc.Text())
	}

	atoms := make([]Atom, 0, n)
	pos := make([]engine.Vec3, 0, n)
	for len(atoms) < n && sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: line %q", ErrXYZ, sc.Text())
		}
		a, err := NewAtom(fmt.Sprintf("%s%d", fields[0], len(atoms)+1), fields[0])
		if err != nil {
			return nil, err
		}
		var p engine.Vec3
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: coordinate %q", ErrXYZ, fields[k+1])
			}
			p[k] = v / units.AngstromPerNM
		}
		atoms = append(atoms, a)
		pos = append(pos, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(atoms) != n {
		return nil, fmt.Errorf("%w: expected %d atoms, read %d", ErrXYZ, n, len(atoms))
	}

	m, err := New(name, atoms, nil, pos)
	if err != nil {
		return nil, err
	}
	m.InferBonds(bondTolerance)
	return m, nil
}

// WriteXYZFrame writes one XYZ frame with positions converted to angstrom.
func WriteXYZFrame(w io.Writer, atoms []Atom, positions []engine.Vec3, comment string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", len(atoms), strings.ReplaceAll(comment, "\n", " "))
	for i, a := range atoms {
		p := positions[i].Scale(units.AngstromPerNM)
		fmt.Fprintf(bw, "%-2s %14.6f %14.6f %14.6f\n", a.Element, p[0], p[1], p[2])
	}
	return bw.Flush()
}

func (m *Molecule) WriteXYZ(w io.Writer) error {
	return WriteXYZFrame(w, m.Atoms, m.Positions, m.Name)
}
