package fingerprint

import "github.com/turtacn/molprint/internal/domain/molecule"

// MACCSParams configures the MACCS keys fingerprint.
type MACCSParams struct {
	Count bool
}

// maccsKey sets element idx when count(m) > above. In count mode the element
// holds the raw match count.
type maccsKey struct {
	idx   int
	above int
	count func(m *molecule.Mol) int
}

type atomPred func(a molecule.Atom) bool

func elem(nums ...int) atomPred {
	return func(a molecule.Atom) bool {
		for _, n := range nums {
			if a.AtomicNum == n {
				return true
			}
		}
		return false
	}
}

func elemRange(lo, hi int) atomPred {
	return func(a molecule.Atom) bool { return a.AtomicNum >= lo && a.AtomicNum <= hi }
}

var (
	isC       = elem(6)
	isN       = elem(7)
	isO       = elem(8)
	isS       = elem(16)
	isHalogen = elem(9, 17, 35, 53)
	isHetero  = func(a molecule.Atom) bool { return a.AtomicNum != 6 && a.AtomicNum != 1 && a.AtomicNum != 0 }
	isOther   = func(a molecule.Atom) bool {
		switch a.AtomicNum {
		case 0, 1, 6, 7, 8, 9, 14, 15, 16, 17, 35, 53:
			return false
		}
		return true
	}
)

func atoms(p atomPred) func(m *molecule.Mol) int {
	return func(m *molecule.Mol) int {
		n := 0
		for i := 0; i < m.NumAtoms(); i++ {
			if p(m.Atom(i)) {
				n++
			}
		}
		return n
	}
}

func ringAtoms(p atomPred) func(m *molecule.Mol) int {
	return func(m *molecule.Mol) int {
		n := 0
		for i := 0; i < m.NumAtoms(); i++ {
			if m.InRing(i) && p(m.Atom(i)) {
				n++
			}
		}
		return n
	}
}

// bonds counts bonds between atoms matching p and q; order 0 matches any.
func bonds(p, q atomPred, order molecule.BondOrder) func(m *molecule.Mol) int {
	return func(m *molecule.Mol) int {
		n := 0
		for _, b := range m.Bonds() {
			if order != 0 && b.Order != order {
				continue
			}
			a1, a2 := m.Atom(b.A), m.Atom(b.B)
			if (p(a1) && q(a2)) || (p(a2) && q(a1)) {
				n++
			}
		}
		return n
	}
}

func ringsOfSize(k int, needHetero bool) func(m *molecule.Mol) int {
	return func(m *molecule.Mol) int {
		n := 0
		for _, r := range m.Rings() {
			if len(r) != k {
				continue
			}
			if needHetero && !anyAtom(m, r, isHetero) {
				continue
			}
			n++
		}
		return n
	}
}

func aromaticRings(m *molecule.Mol) int {
	n := 0
	for _, r := range m.Rings() {
		all := true
		for _, i := range r {
			all = all && m.Atom(i).Aromatic
		}
		if all {
			n++
		}
	}
	return n
}

func anyAtom(m *molecule.Mol, idx []int, p atomPred) bool {
	for _, i := range idx {
		if p(m.Atom(i)) {
			return true
		}
	}
	return false
}

func withHydrogens(p atomPred, lo, hi int) atomPred {
	return func(a molecule.Atom) bool { return p(a) && a.Hydrogens >= lo && a.Hydrogens <= hi }
}

// maccsKeys covers the keys expressible as element, bond, ring and charge
// counts. Keys that need general substructure matching are never set.
var maccsKeys = []maccsKey{
	{idx: 1, count: atoms(func(a molecule.Atom) bool { return a.Isotope != 0 })},
	{idx: 2, count: atoms(elemRange(104, 118))},
	{idx: 3, count: atoms(elem(32, 33, 34, 50, 51, 52, 82, 83, 84))},
	{idx: 4, count: atoms(elemRange(89, 103))},
	{idx: 5, count: atoms(elem(21, 22, 39, 40, 72))},
	{idx: 6, count: atoms(elemRange(57, 71))},
	{idx: 7, count: atoms(elem(23, 24, 25, 41, 42, 43, 73, 74, 75))},
	{idx: 8, count: ringsOfSize(4, true)},
	{idx: 9, count: atoms(elem(26, 27, 28, 44, 45, 46, 76, 77, 78))},
	{idx: 10, count: atoms(elem(4, 12, 20, 38, 56, 88))},
	{idx: 11, count: ringsOfSize(4, false)},
	{idx: 12, count: atoms(elem(29, 30, 47, 48, 79, 80))},
	{idx: 14, count: bonds(isS, isS, molecule.BondSingle)},
	{idx: 16, count: ringsOfSize(3, true)},
	{idx: 17, count: bonds(isC, isC, molecule.BondTriple)},
	{idx: 18, count: atoms(elem(5, 13, 31, 49, 81))},
	{idx: 19, count: ringsOfSize(7, false)},
	{idx: 20, count: atoms(elem(14))},
	{idx: 22, count: ringsOfSize(3, false)},
	{idx: 24, count: bonds(isN, isO, 0)},
	{idx: 27, count: atoms(elem(53))},
	{idx: 29, count: atoms(elem(15))},
	{idx: 31, count: bonds(isHetero, isHalogen, 0)},
	{idx: 33, count: bonds(isN, isS, 0)},
	{idx: 35, count: atoms(elem(3, 11, 19, 37, 55, 87))},
	{idx: 36, count: ringAtoms(isS)},
	{idx: 40, count: bonds(isS, isO, 0)},
	{idx: 41, count: bonds(isC, isN, molecule.BondTriple)},
	{idx: 42, count: atoms(elem(9))},
	{idx: 44, count: atoms(isOther)},
	{idx: 46, count: atoms(elem(35))},
	{idx: 49, count: atoms(func(a molecule.Atom) bool { return a.Charge != 0 })},
	{idx: 57, count: ringAtoms(isO)},
	{idx: 88, count: atoms(isS)},
	{idx: 96, count: ringsOfSize(5, false)},
	{idx: 103, count: atoms(elem(17))},
	{idx: 120, count: ringAtoms(isHetero), above: 1},
	{idx: 121, count: ringAtoms(isN)},
	{idx: 125, count: aromaticRings, above: 1},
	{idx: 134, count: atoms(isHalogen)},
	{idx: 137, count: ringAtoms(isHetero)},
	{idx: 139, count: atoms(withHydrogens(isO, 1, 4))},
	{idx: 141, count: atoms(withHydrogens(isC, 3, 4)), above: 2},
	{idx: 145, count: ringsOfSize(6, false), above: 1},
	{idx: 146, count: atoms(isO), above: 2},
	{idx: 149, count: atoms(withHydrogens(isC, 3, 4)), above: 1},
	{idx: 154, count: bonds(isC, isO, molecule.BondDouble)},
	{idx: 157, count: bonds(isC, isO, molecule.BondSingle)},
	{idx: 158, count: bonds(isC, isN, molecule.BondSingle)},
	{idx: 159, count: atoms(isO), above: 1},
	{idx: 160, count: atoms(withHydrogens(isC, 3, 4))},
	{idx: 161, count: atoms(isN)},
	{idx: 162, count: atoms(func(a molecule.Atom) bool { return a.Aromatic })},
	{idx: 163, count: ringsOfSize(6, false)},
	{idx: 164, count: atoms(isO)},
	{idx: 165, count: func(m *molecule.Mol) int { return len(m.Rings()) }},
	{idx: 166, count: func(m *molecule.Mol) int { return m.Fragments() }, above: 1},
}

// Compute evaluates every key against m.
func (p MACCSParams) Compute(m *molecule.Mol) ([]uint32, error) {
	out := make([]uint32, MACCSSize)
	for _, k := range maccsKeys {
		c := k.count(m)
		if c <= k.above {
			continue
		}
		if p.Count {
			out[k.idx] = uint32(c)
		} else {
			out[k.idx] = 1
		}
	}
	return out, nil
}
