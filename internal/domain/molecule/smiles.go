package molecule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/molprint/pkg/errors"
)

// ParseSMILES parses a SMILES string into a Mol. Anything after the first
// whitespace is treated as a title and ignored.
//
// Supported: organic subset and aromatic atoms, bracket atoms (isotope,
// chirality, hydrogen count, charge, atom class), bond symbols - = # $ : / \,
// branches, ring closures 0-9 and %nn, and dot-separated fragments.
func ParseSMILES(s string) (*Mol, error) {
	text := strings.TrimSpace(s)
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		text = text[:i]
	}
	if text == "" {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "empty SMILES")
	}
	p := &parser{src: text, prev: -1, rings: map[int]openRing{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.finish(s), nil
}

type pendingBond struct {
	order  BondOrder
	stereo byte
	set    bool
}

type openRing struct {
	atom int
	bond pendingBond
}

type parser struct {
	src    string
	pos    int
	atoms  []Atom
	bonds  []Bond
	bondAt map[[2]int]int
	prev   int
	bond   pendingBond
	stack  []int
	rings  map[int]openRing
}

func (p *parser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeMoleculeInvalidSMILES, format, args...).
		WithDetail(fmt.Sprintf("position %d in %q", p.pos, p.src))
}

func (p *parser) run() error {
	p.bondAt = map[[2]int]int{}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch opened before any atom")
			}
			if p.bond.set {
				return p.fail("bond symbol before branch")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.bond.set {
				return p.fail("dangling bond at end of branch")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '.':
			if p.bond.set {
				return p.fail("dangling bond before '.'")
			}
			if len(p.stack) > 0 {
				return p.fail("'.' inside a branch")
			}
			p.prev = -1
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.bond.set {
				return p.fail("two consecutive bond symbols")
			}
			if p.prev < 0 {
				return p.fail("bond symbol before any atom")
			}
			p.bond = pendingBond{order: bondOrderOf(c), set: true}
			if c == '/' || c == '\\' {
				p.bond.stereo = c
			}
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.src) {
				return p.fail("truncated %%nn ring closure")
			}
			d1, d2 := p.src[p.pos+1], p.src[p.pos+2]
			if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
				return p.fail("invalid %%nn ring closure")
			}
			if err := p.ringClosure(int(d1-'0')*10 + int(d2-'0')); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(a); err != nil {
				return err
			}
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(a); err != nil {
				return err
			}
		}
	}
	if p.bond.set {
		return p.fail("dangling bond at end of input")
	}
	if len(p.stack) > 0 {
		return p.fail("unbalanced '('")
	}
	for n := range p.rings {
		return p.fail("unclosed ring bond %d", n)
	}
	return nil
}

func bondOrderOf(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func (p *parser) addAtom(a Atom) error {
	idx := len(p.atoms)
	p.atoms = append(p.atoms, a)
	if p.prev >= 0 {
		if err := p.connect(p.prev, idx, p.bond); err != nil {
			return err
		}
	}
	p.bond = pendingBond{}
	p.prev = idx
	return nil
}

func (p *parser) connect(a, b int, pb pendingBond) error {
	if a == b {
		return p.fail("ring bond from atom %d to itself", a)
	}
	key := pairKey(a, b)
	if _, dup := p.bondAt[key]; dup {
		return p.fail("duplicate bond between atoms %d and %d", a, b)
	}
	order := pb.order
	if !pb.set || pb.stereo != 0 {
		order = BondSingle
		if !pb.set && p.atoms[a].Aromatic && p.atoms[b].Aromatic {
			order = BondAromatic
		}
	}
	p.bondAt[key] = len(p.bonds)
	p.bonds = append(p.bonds, Bond{A: key[0], B: key[1], Order: order, Stereo: pb.stereo})
	return nil
}

func (p *parser) ringClosure(n int) error {
	if p.prev < 0 {
		return p.fail("ring closure %d before any atom", n)
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = openRing{atom: p.prev, bond: p.bond}
		p.bond = pendingBond{}
		return nil
	}
	delete(p.rings, n)
	pb := p.bond
	if open.bond.set {
		if pb.set && pb.order != open.bond.order {
			return p.fail("conflicting bond orders on ring closure %d", n)
		}
		pb = open.bond
	}
	p.bond = pendingBond{}
	return p.connect(open.atom, p.prev, pb)
}

func (p *parser) organicAtom() (Atom, error) {
	c := p.src[p.pos]
	if c == '*' {
		p.pos++
		return Atom{Symbol: "*"}, nil
	}
	if sym, ok := aromaticOrganic[c]; ok {
		p.pos++
		return Atom{Symbol: sym, AtomicNum: AtomicNumber(sym), Aromatic: true, Hydrogens: -1}, nil
	}
	for _, sym := range organicSubset {
		if strings.HasPrefix(p.src[p.pos:], sym) {
			p.pos += len(sym)
			return Atom{Symbol: sym, AtomicNum: AtomicNumber(sym), Hydrogens: -1}, nil
		}
	}
	return Atom{}, p.fail("unexpected character %q", c)
}

// bracketAtom parses [isotope? symbol chirality? hcount? charge? class?].
func (p *parser) bracketAtom() (Atom, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return Atom{}, p.fail("unterminated bracket atom")
	}
	body := p.src[p.pos+1 : p.pos+end]
	a := Atom{Bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	sym, aromatic := matchBracketSymbol(body[i:])
	if sym == "" {
		return Atom{}, p.fail("unknown element in [%s]", body)
	}
	i += len(sym)
	a.Aromatic = aromatic
	if aromatic {
		sym = strings.ToUpper(sym[:1]) + sym[1:]
	}
	a.Symbol = sym
	a.AtomicNum = AtomicNumber(sym)

	if i < len(body) && body[i] == '@' {
		j := i + 1
		if j < len(body) && body[j] == '@' {
			j++
		}
		a.Chirality = body[i:j]
		i = j
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.Hydrogens = 1
		if i < len(body) && isDigit(body[i]) {
			a.Hydrogens = int(body[i] - '0')
			i++
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		ch := body[i]
		i++
		n := 1
		switch {
		case i < len(body) && isDigit(body[i]):
			n = 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
		default:
			for i < len(body) && body[i] == ch {
				n++
				i++
			}
		}
		a.Charge = sign * n
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return Atom{}, p.fail("invalid atom class in [%s]", body)
		}
		for i < len(body) && isDigit(body[i]) {
			a.Class = a.Class*10 + int(body[i]-'0')
			i++
		}
	}

	if i != len(body) {
		return Atom{}, p.fail("unexpected %q in [%s]", body[i:], body)
	}
	p.pos += end + 1
	return a, nil
}

func matchBracketSymbol(s string) (string, bool) {
	if strings.HasPrefix(s, "*") {
		return "*", false
	}
	for _, sym := range aromaticBracket {
		if strings.HasPrefix(s, sym) {
			return sym, true
		}
	}
	if len(s) >= 2 && s[0] >= 'A' && s[0] <= 'Z' && s[1] >= 'a' && s[1] <= 'z' {
		if _, ok := atomicNumbers[s[:2]]; ok {
			return s[:2], false
		}
	}
	if len(s) >= 1 {
		if _, ok := atomicNumbers[s[:1]]; ok {
			return s[:1], false
		}
	}
	return "", false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// finish builds the immutable Mol: adjacency, ring bonds, implicit
// hydrogens, and warnings.
func (p *parser) finish(source string) *Mol {
	m := &Mol{
		source: source,
		atoms:  p.atoms,
		bonds:  p.bonds,
		adj:    make([][]int, len(p.atoms)),
		bondAt: p.bondAt,
	}
	for _, b := range p.bonds {
		m.adj[b.A] = append(m.adj[b.A], b.B)
		m.adj[b.B] = append(m.adj[b.B], b.A)
	}
	for i := range m.adj {
		sort.Ints(m.adj[i])
	}
	m.ringBond = findRingBonds(m)

	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Aromatic && !m.InRing(i) {
			m.warnings = append(m.warnings, fmt.Sprintf("non-ring atom %d marked aromatic", i))
		}
		if a.Hydrogens >= 0 {
			continue
		}
		used := 0
		for _, j := range m.adj[i] {
			b, _ := m.Bond(i, j)
			used += b.Order.Valence()
		}
		// Aromatic O and S donate a lone pair to the ring; every other
		// aromatic atom contributes one extra valence.
		if a.Aromatic && a.AtomicNum != 8 && a.AtomicNum != 16 {
			used++
		}
		a.Hydrogens = 0
		valences := defaultValences[a.AtomicNum]
		filled := false
		for _, v := range valences {
			if v >= used {
				a.Hydrogens = v - used
				filled = true
				break
			}
		}
		if !filled && len(valences) > 0 {
			m.warnings = append(m.warnings,
				fmt.Sprintf("explicit valence %d for atom %d (%s) exceeds allowed %d",
					used, i, a.Symbol, valences[len(valences)-1]))
		}
	}
	return m
}

// findRingBonds marks every bond that is not a bridge (Tarjan low-link).
func findRingBonds(m *Mol) []bool {
	n := len(m.atoms)
	ring := make([]bool, len(m.bonds))
	for i := range ring {
		ring[i] = true
	}
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	t := 0
	var dfs func(u, parentBond int)
	dfs = func(u, parentBond int) {
		disc[u], low[u] = t, t
		t++
		for _, v := range m.adj[u] {
			bi := m.bondAt[pairKey(u, v)]
			if bi == parentBond {
				continue
			}
			if disc[v] < 0 {
				dfs(v, bi)
				if low[v] < low[u] {
					low[u] = low[v]
				}
				if low[v] > disc[u] {
					ring[bi] = false
				}
			} else if disc[v] < low[u] {
				low[u] = disc[v]
			}
		}
	}
	for u := 0; u < n; u++ {
		if disc[u] < 0 {
			dfs(u, -1)
		}
	}
	return ring
}
