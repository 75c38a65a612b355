package pitch

import "sort"

type Quality int

const (
	Unresolved Quality = iota
	Major
	Minor
)

func (q Quality) String() string {
	switch q {
	case Major:
		return "major"
	case Minor:
		return "minor"
	default:
		return "unresolved"
	}
}

// Chord is the classification of a lattice triangle.
type Chord struct {
	Root    string // pitch-class name of the root, empty when unresolved
	Quality Quality
	Label   string // "C", "Cm" or "<first vertex>?"
}

// ClassifyTriad tries every vertex as the root. Intervals {4,7} above it make
// a major triad and {3,7} a minor one. names are the vertex labels in the
// same order as pcs and only feed the unresolved label.
func ClassifyTriad(pcs [3]int, names [3]string) Chord {
	for i := 0; i < 3; i++ {
		root := Mod12(pcs[i])
		iv := make([]int, 0, 2)
		for j := 0; j < 3; j++ {
			if j != i {
				iv = append(iv, Mod12(pcs[j]-root))
			}
		}
		sort.Ints(iv)
		switch {
		case iv[0] == 4 && iv[1] == 7:
			return Chord{Root: Names[root], Quality: Major, Label: Names[root]}
		case iv[0] == 3 && iv[1] == 7:
			return Chord{Root: Names[root], Quality: Minor, Label: Names[root] + "m"}
		}
	}
	return Chord{Quality: Unresolved, Label: names[0] + "?"}
}
