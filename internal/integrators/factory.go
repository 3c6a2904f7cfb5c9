package integrators

import (
	"fmt"

	"github.com/shiva16/molecular-design-toolkit/internal/mol"
)

// Kinds lists the integrator kinds accepted by New.
func Kinds() []string { return []string{KindLangevin, KindVerlet} }

// New creates an integrator by kind. The thermostat is ignored by schemes
// that do not use one.
func New(kind string, m *mol.Molecule, p Params, t Thermostat, opts ...Option) (Integrator, error) {
	var (
		integ Integrator
		err   error
	)
	switch kind {
	case KindVerlet:
		integ, err = NewVerlet(m, p, opts...)
	case KindLangevin:
		integ, err = NewLangevin(m, p, t, opts...)
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownKind, kind, Kinds())
	}
	if err != nil {
		return nil, err
	}
	return integ, nil
}
