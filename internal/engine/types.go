package engine

import "math"

// Vec3 is a cartesian vector.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}
func (v Vec3) Dot(o Vec3) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) Norm2() float64     { return v.Dot(v) }
func (v Vec3) Norm() float64      { return math.Sqrt(v.Norm2()) }

func (v Vec3) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// CloneVecs returns an independent copy of vs.
func CloneVecs(vs []Vec3) []Vec3 {
	if vs == nil {
		return nil
	}
	c := make([]Vec3, len(vs))
	copy(c, vs)
	return c
}

// State is a snapshot of a Context.
type State struct {
	Time            float64
	Step            int
	Positions       []Vec3
	Velocities      []Vec3
	Forces          []Vec3
	PotentialEnergy float64
	KineticEnergy   float64
}

// TotalEnergy returns potential plus kinetic energy.
func (s State) TotalEnergy() float64 {
	return s.PotentialEnergy + s.KineticEnergy
}

// KineticEnergy returns sum(m v^2)/2 for the given masses and velocities.
func KineticEnergy(masses []float64, velocities []Vec3) float64 {
	ke := 0.0
	for i, v := range velocities {
		if i < len(masses) {
			ke += 0.5 * masses[i] * v.Norm2()
		}
	}
	return ke
}
