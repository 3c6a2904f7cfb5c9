package models

// ljParams are Lennard-Jones sigma (nm) and epsilon (kJ/mol) per element.
var ljParams = map[string][2]float64{
	"H":  {0.250, 0.125},
	"C":  {0.340, 0.360},
	"N":  {0.325, 0.711},
	"O":  {0.296, 0.879},
	"S":  {0.355, 1.046},
	"Ne": {0.2782, 0.290},
	"Ar": {0.3405, 0.996},
	"Kr": {0.3636, 1.386},
	"Xe": {0.4047, 1.921},
}

// LJ returns the Lennard-Jones parameters for an element symbol.
func LJ(symbol string) (sigma, epsilon float64, ok bool) {
	p, ok := ljParams[symbol]
	return p[0], p[1], ok
}
