package fingerprint

import (
	"sort"

	"github.com/turtacn/molprint/internal/domain/molecule"
)

// MorganParams configures the circular (ECFP-style) fingerprint.
type MorganParams struct {
	FPSize       int
	Radius       int
	Count        bool
	UseChirality bool
}

// Compute hashes every atom environment of radius 0..Radius into the vector.
// Environment identifiers are refined Weisfeiler-Lehman style: each round
// combines an atom's identifier with its neighbours' identifiers and the
// connecting bond orders.
func (p MorganParams) Compute(m *molecule.Mol) ([]uint32, error) {
	out := make([]uint32, p.FPSize)
	n := m.NumAtoms()
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		ids[i] = atomInvariant(m, i, p.UseChirality)
		fold(out, ids[i], p.Count)
	}

	type env struct {
		order uint64
		id    uint64
	}
	next := make([]uint64, n)
	for r := 1; r <= p.Radius; r++ {
		for i := 0; i < n; i++ {
			nbrs := m.Neighbors(i)
			envs := make([]env, len(nbrs))
			for k, j := range nbrs {
				b, _ := m.Bond(i, j)
				envs[k] = env{order: uint64(b.Order), id: ids[j]}
			}
			sort.Slice(envs, func(a, b int) bool {
				if envs[a].order != envs[b].order {
					return envs[a].order < envs[b].order
				}
				return envs[a].id < envs[b].id
			})
			vals := make([]uint64, 0, 2+2*len(envs))
			vals = append(vals, uint64(r), ids[i])
			for _, e := range envs {
				vals = append(vals, e.order, e.id)
			}
			next[i] = hashInts(vals...)
		}
		ids, next = next, ids
		for i := 0; i < n; i++ {
			fold(out, ids[i], p.Count)
		}
	}
	return out, nil
}

// atomInvariant is the radius-0 identifier of atom i.
func atomInvariant(m *molecule.Mol, i int, chirality bool) uint64 {
	a := m.Atom(i)
	vals := []uint64{
		uint64(a.AtomicNum),
		uint64(m.Degree(i)),
		uint64(a.Hydrogens),
		signed(a.Charge),
		uint64(a.Isotope),
		boolBit(m.InRing(i)),
		boolBit(a.Aromatic),
	}
	if chirality {
		vals = append(vals, uint64(len(a.Chirality)))
	}
	return hashInts(vals...)
}
