package fingerprint

import "github.com/turtacn/molprint/internal/domain/molecule"

// AtomPairParams configures the atom pair fingerprint.
type AtomPairParams struct {
	FPSize      int
	MinDistance int
	MaxDistance int
	Count       bool
}

// Compute hashes every pair of atoms whose topological distance lies in
// [MinDistance, MaxDistance]. Atoms in different fragments never pair.
func (p AtomPairParams) Compute(m *molecule.Mol) ([]uint32, error) {
	out := make([]uint32, p.FPSize)
	n := m.NumAtoms()
	codes := make([]uint64, n)
	for i := 0; i < n; i++ {
		codes[i] = atomPairCode(m, i)
	}
	dist := m.Distances()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist[i][j]
			if d < 0 || d < p.MinDistance || d > p.MaxDistance {
				continue
			}
			a, b := codes[i], codes[j]
			if a > b {
				a, b = b, a
			}
			fold(out, hashInts(a, b, uint64(d)), p.Count)
		}
	}
	return out, nil
}

// atomPairCode packs element, capped degree, pi electrons and hydrogens.
func atomPairCode(m *molecule.Mol, i int) uint64 {
	a := m.Atom(i)
	pi := 0
	for _, j := range m.Neighbors(i) {
		b, _ := m.Bond(i, j)
		pi += b.Order.Valence() - 1
	}
	if a.Aromatic {
		pi++
	}
	return uint64(a.AtomicNum)<<16 | uint64(min(m.Degree(i), 7))<<8 |
		uint64(min(pi, 3))<<4 | uint64(min(a.Hydrogens, 3))
}
