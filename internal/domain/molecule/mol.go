// Package molecule turns SMILES text into immutable molecular graph handles
// and exposes the small query surface the fingerprint routines need.
package molecule

import (
	"sort"
	"strconv"
	"sync"
)

// BondOrder is the multiplicity of a bond. Aromatic bonds have their own value.
type BondOrder uint8

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// Valence is the contribution of the bond to the valence of its atoms.
// Aromatic bonds count as one; the aromatic atom itself adds the extra one.
func (b BondOrder) Valence() int {
	switch b {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// Atom is one vertex of the molecular graph.
type Atom struct {
	Symbol    string
	AtomicNum int
	Aromatic  bool
	Isotope   int
	Charge    int
	// Hydrogens is the total hydrogen count: explicit in bracket atoms,
	// derived from default valences otherwise.
	Hydrogens int
	Chirality string
	Class     int
	Bracket   bool
}

// Bond is one edge of the molecular graph. A < B always holds.
type Bond struct {
	A, B   int
	Order  BondOrder
	Stereo byte
}

// Mol is an immutable molecular graph. All methods are safe for concurrent
// use; derived data is computed lazily once.
type Mol struct {
	source string
	atoms  []Atom
	bonds  []Bond
	adj    [][]int
	// bondAt maps an ordered atom pair to its bond index.
	bondAt   map[[2]int]int
	ringBond []bool
	warnings []string

	distOnce sync.Once
	dist     [][]int

	ringsOnce sync.Once
	rings     [][]int
}

// Source returns the text the molecule was parsed from.
func (m *Mol) Source() string { return m.source }

// Warnings returns non-fatal notes recorded while parsing.
func (m *Mol) Warnings() []string { return m.warnings }

func (m *Mol) NumAtoms() int { return len(m.atoms) }
func (m *Mol) NumBonds() int { return len(m.bonds) }

func (m *Mol) Atom(i int) Atom { return m.atoms[i] }
func (m *Mol) Bonds() []Bond   { return m.bonds }

// Neighbors returns the indices of atoms bonded to atom i, ascending.
func (m *Mol) Neighbors(i int) []int { return m.adj[i] }

// Degree is the number of explicit (heavy) neighbours of atom i.
func (m *Mol) Degree(i int) int { return len(m.adj[i]) }

// Bond returns the bond between atoms i and j.
func (m *Mol) Bond(i, j int) (Bond, bool) {
	idx, ok := m.bondAt[pairKey(i, j)]
	if !ok {
		return Bond{}, false
	}
	return m.bonds[idx], true
}

// BondIndex returns the index in Bonds() of the bond between i and j, or -1.
func (m *Mol) BondIndex(i, j int) int {
	if idx, ok := m.bondAt[pairKey(i, j)]; ok {
		return idx
	}
	return -1
}

// IsRingBond reports whether bond b lies on a cycle.
func (m *Mol) IsRingBond(b int) bool { return m.ringBond[b] }

// InRing reports whether atom i has at least one ring bond.
func (m *Mol) InRing(i int) bool {
	for _, j := range m.adj[i] {
		if m.ringBond[m.bondAt[pairKey(i, j)]] {
			return true
		}
	}
	return false
}

// Fragments counts the connected components.
func (m *Mol) Fragments() int {
	seen := make([]bool, len(m.atoms))
	n := 0
	for s := range m.atoms {
		if seen[s] {
			continue
		}
		n++
		stack := []int{s}
		seen[s] = true
		for len(stack) > 0 {
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, b := range m.adj[a] {
				if !seen[b] {
					seen[b] = true
					stack = append(stack, b)
				}
			}
		}
	}
	return n
}

// Distances returns the topological distance matrix (bond counts). Atoms in
// different fragments are at distance -1.
func (m *Mol) Distances() [][]int {
	m.distOnce.Do(func() {
		n := len(m.atoms)
		m.dist = make([][]int, n)
		for s := 0; s < n; s++ {
			d := make([]int, n)
			for i := range d {
				d[i] = -1
			}
			d[s] = 0
			queue := []int{s}
			for len(queue) > 0 {
				a := queue[0]
				queue = queue[1:]
				for _, b := range m.adj[a] {
					if d[b] < 0 {
						d[b] = d[a] + 1
						queue = append(queue, b)
					}
				}
			}
			m.dist[s] = d
		}
	})
	return m.dist
}

// Rings returns the smallest cycle through each ring bond, deduplicated, as
// sorted atom index lists ordered by size. For ordinary fused systems this
// matches the smallest set of smallest rings.
func (m *Mol) Rings() [][]int {
	m.ringsOnce.Do(func() {
		seen := map[string]bool{}
		for bi, b := range m.bonds {
			if !m.ringBond[bi] {
				continue
			}
			path := m.shortestPathAvoiding(b.A, b.B, bi)
			if path == nil {
				continue
			}
			sort.Ints(path)
			key := intsKey(path)
			if !seen[key] {
				seen[key] = true
				m.rings = append(m.rings, path)
			}
		}
		sort.SliceStable(m.rings, func(i, j int) bool { return len(m.rings[i]) < len(m.rings[j]) })
	})
	return m.rings
}

// shortestPathAvoiding finds the shortest path from a to b that does not use
// bond skip, returning its atoms.
func (m *Mol) shortestPathAvoiding(a, b, skip int) []int {
	prev := make([]int, len(m.atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[a] = -1
	queue := []int{a}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == b {
			break
		}
		for _, v := range m.adj[u] {
			if prev[v] != -2 || m.bondAt[pairKey(u, v)] == skip {
				continue
			}
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if prev[b] == -2 {
		return nil
	}
	var path []int
	for u := b; u != -1; u = prev[u] {
		path = append(path, u)
	}
	return path
}

func pairKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

func intsKey(xs []int) string {
	b := make([]byte, 0, len(xs)*4)
	for _, x := range xs {
		b = strconv.AppendInt(b, int64(x), 10)
		b = append(b, ',')
	}
	return string(b)
}
