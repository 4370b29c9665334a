package fingerprint

import (
	"sort"

	"github.com/turtacn/molprint/internal/domain/molecule"
)

// LayeredParams configures the layered path fingerprint.
type LayeredParams struct {
	FPSize        int
	MinPath       int
	MaxPath       int
	BranchedPaths bool
}

// layer indices; each layer adds one kind of information to the previous.
const (
	layerTopology = iota
	layerBondOrder
	layerAtomType
	layerRing
	layerAromatic
	numLayers
)

// Compute enumerates linear paths of MinPath..MaxPath bonds (and, when
// BranchedPaths is set, star-shaped branch points) and sets one bit per
// layer for each subgraph.
func (p LayeredParams) Compute(m *molecule.Mol) ([]uint32, error) {
	out := make([]uint32, p.FPSize)
	p.walkPaths(m, func(path []int) {
		for layer := 0; layer < numLayers; layer++ {
			fold(out, pathHash(m, path, layer), false)
		}
	})
	if p.BranchedPaths {
		p.walkBranches(m, func(center int, leaves []int) {
			if len(leaves) < p.MinPath || len(leaves) > p.MaxPath {
				return
			}
			for layer := 0; layer < numLayers; layer++ {
				fold(out, branchHash(m, center, leaves, layer), false)
			}
		})
	}
	return out, nil
}

// walkPaths visits every simple path with bond count in range exactly once.
func (p LayeredParams) walkPaths(m *molecule.Mol, visit func(path []int)) {
	n := m.NumAtoms()
	onPath := make([]bool, n)
	path := make([]int, 0, p.MaxPath+1)
	var extend func(u int)
	extend = func(u int) {
		bonds := len(path) - 1
		if bonds >= p.MinPath && path[0] < path[len(path)-1] {
			visit(path)
		}
		if bonds == p.MaxPath {
			return
		}
		for _, v := range m.Neighbors(u) {
			if onPath[v] {
				continue
			}
			onPath[v] = true
			path = append(path, v)
			extend(v)
			path = path[:len(path)-1]
			onPath[v] = false
		}
	}
	for s := 0; s < n; s++ {
		onPath[s] = true
		path = append(path[:0], s)
		extend(s)
		onPath[s] = false
	}
}

// walkBranches visits each subset of three or more neighbours of every
// atom with degree >= 3.
func (p LayeredParams) walkBranches(m *molecule.Mol, visit func(center int, leaves []int)) {
	for c := 0; c < m.NumAtoms(); c++ {
		nbrs := m.Neighbors(c)
		if len(nbrs) < 3 {
			continue
		}
		for mask := 0; mask < 1<<len(nbrs); mask++ {
			var leaves []int
			for k, j := range nbrs {
				if mask&(1<<k) != 0 {
					leaves = append(leaves, j)
				}
			}
			if len(leaves) >= 3 {
				visit(c, leaves)
			}
		}
	}
}

func atomLabel(m *molecule.Mol, i, layer int) uint64 {
	var l uint64
	if layer >= layerAtomType {
		l = uint64(m.Atom(i).AtomicNum) << 8
	}
	if layer >= layerAromatic {
		l |= boolBit(m.Atom(i).Aromatic)
	}
	return l
}

func bondLabel(m *molecule.Mol, i, j, layer int) uint64 {
	var l uint64
	if layer >= layerBondOrder {
		b, _ := m.Bond(i, j)
		order := b.Order
		if layer < layerAromatic && order == molecule.BondAromatic {
			order = molecule.BondSingle
		}
		l = uint64(order) << 4
	}
	if layer >= layerRing {
		l |= boolBit(m.IsRingBond(m.BondIndex(i, j)))
	}
	return l
}

// pathHash hashes the labelled path in the lexicographically smaller of its
// two directions so both traversals collide.
func pathHash(m *molecule.Mol, path []int, layer int) uint64 {
	seq := func(reverse bool) []uint64 {
		vals := make([]uint64, 0, 2*len(path)+2)
		vals = append(vals, uint64(layer), uint64(len(path)-1))
		for k := range path {
			i := path[k]
			if reverse {
				i = path[len(path)-1-k]
			}
			vals = append(vals, atomLabel(m, i, layer))
			if k+1 < len(path) {
				j := path[k+1]
				if reverse {
					j = path[len(path)-2-k]
				}
				vals = append(vals, bondLabel(m, i, j, layer))
			}
		}
		return vals
	}
	fwd, rev := seq(false), seq(true)
	for k := range fwd {
		if fwd[k] != rev[k] {
			if rev[k] < fwd[k] {
				fwd = rev
			}
			break
		}
	}
	return hashInts(fwd...)
}

func branchHash(m *molecule.Mol, center int, leaves []int, layer int) uint64 {
	parts := make([]uint64, len(leaves))
	for k, j := range leaves {
		parts[k] = bondLabel(m, center, j, layer)<<16 | atomLabel(m, j, layer)
	}
	sort.Slice(parts, func(a, b int) bool { return parts[a] < parts[b] })
	vals := append([]uint64{uint64(layer), 1 << 32, atomLabel(m, center, layer)}, parts...)
	return hashInts(vals...)
}
