package prs

import "math"

// Resolution is a stored load converted to the weight to lift.
type Resolution struct {
	CalculatedLoad float64 `json:"calculated_load"`
	OriginalLoad   float64 `json:"original_load"`
}

// Resolve converts a stored load into a concrete weight. Absolute loads pass
// through. Relative loads are a percentage of the exercise's 1RM from table,
// rounded to the nearest whole unit; an exercise missing from table resolves
// to 0. The stored percentage is returned as OriginalLoad.
func Resolve(exercise string, load float64, relative bool, table map[string]float64) Resolution {
	if !relative {
		return Resolution{CalculatedLoad: load, OriginalLoad: load}
	}
	orm := table[Key(exercise)]
	return Resolution{
		CalculatedLoad: math.Round(orm * load / 100),
		OriginalLoad:   load,
	}
}
