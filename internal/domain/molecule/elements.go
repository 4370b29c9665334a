package molecule

import "strings"

// periodic holds element symbols ordered by atomic number (index 0 is Z=1).
var periodic = strings.Fields(`
H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca Sc Ti V Cr Mn Fe Co Ni Cu
Zn Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I Xe Cs Ba
La Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os Ir Pt Au Hg Tl Pb
Bi Po At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es Fm Md No Lr Rf Db Sg Bh Hs
Mt Ds Rg Cn Nh Fl Mc Lv Ts Og`)

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(periodic))
	for i, s := range periodic {
		m[s] = i + 1
	}
	return m
}()

// defaultValences lists the allowed valences of organic-subset elements,
// smallest first. Implicit hydrogens fill up to the first valence that is
// not below the explicit bond order sum.
var defaultValences = map[int][]int{
	5:  {3},       // B
	6:  {4},       // C
	7:  {3, 5},    // N
	8:  {2},       // O
	9:  {1},       // F
	15: {3, 5},    // P
	16: {2, 4, 6}, // S
	17: {1},       // Cl
	35: {1},       // Br
	53: {1},       // I
}

// organic subset symbols usable outside brackets, two-letter symbols first.
var organicSubset = []string{"Cl", "Br", "B", "C", "N", "O", "P", "S", "F", "I"}

// aromatic symbols allowed outside brackets.
var aromaticOrganic = map[byte]string{'b': "B", 'c': "C", 'n': "N", 'o': "O", 'p': "P", 's': "S"}

// aromatic symbols allowed inside brackets, two-letter symbols first.
var aromaticBracket = []string{"se", "as", "te", "si", "b", "c", "n", "o", "p", "s"}

// AtomicNumber returns the atomic number for symbol, or 0 when unknown.
// The wildcard "*" maps to 0 as well.
func AtomicNumber(symbol string) int {
	return atomicNumbers[symbol]
}
