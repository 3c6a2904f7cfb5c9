package engine

import (
	"fmt"
	"sort"
)

// PairFunc evaluates the interaction between particles i and j separated by
// r = pos[j] - pos[i]. It returns coef such that the force on i is coef*r
// (and -coef*r on j), plus the pair energy. It must be symmetric in i and j.
type PairFunc func(i, j int, r Vec3, r2 float64) (coef, energy float64)

// Platform evaluates pairwise interactions.
type Platform interface {
	Name() string
	Available() bool
	// PairForces accumulates pair forces into out and returns the total
	// pair energy.
	PairForces(pos []Vec3, pair PairFunc, out []Vec3) float64
}

var platforms = map[string]func() Platform{
	"reference": func() Platform { return Reference() },
	"cpu":       func() Platform { return NewCPUPlatform(0) },
}

// PlatformByName returns a fresh platform. An empty name selects the best
// available platform.
func PlatformByName(name string) (Platform, error) {
	if name == "" {
		return AutoSelectPlatform(), nil
	}
	fn, ok := platforms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPlatform, name, Platforms())
	}
	return fn(), nil
}

// Platforms lists registered platform names in sorted order.
func Platforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func AutoSelectPlatform() Platform {
	cpu := NewCPUPlatform(0)
	if cpu.Available() {
		return cpu
	}
	return Reference()
}

type referencePlatform struct{}

// Reference returns the serial platform. It visits each pair once.
func Reference() Platform { return referencePlatform{} }

func (referencePlatform) Name() string    { return "reference" }
func (referencePlatform) Available() bool { return true }

func (referencePlatform) PairForces(pos []Vec3, pair PairFunc, out []Vec3) float64 {
	return pairsSerial(pos, pair, out)
}

func pairsSerial(pos []Vec3, pair PairFunc, out []Vec3) float64 {
	n := len(pos)
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pos[j].Sub(pos[i])
			coef, e := pair(i, j, r, r.Norm2())
			if coef != 0 {
				f := r.Scale(coef)
				out[i] = out[i].Add(f)
				out[j] = out[j].Sub(f)
			}
			energy += e
		}
	}
	return energy
}
