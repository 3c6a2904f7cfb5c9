package mol

// element holds the per-element data the toolkit needs: atomic mass in
// daltons and covalent radius in nm.
type element struct {
	mass     float64
	covalent float64
}

var elements = map[string]element{
	"H":  {1.008, 0.031},
	"C":  {12.011, 0.076},
	"N":  {14.007, 0.071},
	"O":  {15.999, 0.066},
	"S":  {32.06, 0.105},
	"Ne": {20.180, 0.058},
	"Ar": {39.948, 0.106},
	"Kr": {83.798, 0.116},
	"Xe": {131.293, 0.140},
}

// Mass returns the standard atomic mass of symbol and whether it is known.
func Mass(symbol string) (float64, bool) {
	e, ok := elements[symbol]
	return e.mass, ok
}

// CovalentRadius returns the covalent radius of symbol in nm.
func CovalentRadius(symbol string) (float64, bool) {
	e, ok := elements[symbol]
	return e.covalent, ok
}

// noble gases never form bonds in this toolkit.
func noble(symbol string) bool {
	switch symbol {
	case "He", "Ne", "Ar", "Kr", "Xe":
		return true
	}
	return false
}
