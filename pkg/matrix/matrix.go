package matrix

import "fmt"

// Matrix is the read-only view shared by Dense and CSR outputs.
type Matrix interface {
	Rows() int
	Cols() int
	DType() DType
	// NNZ counts stored non-zero elements.
	NNZ() int
	// At returns element (i, j) widened to uint32.
	At(i, j int) uint32
	IsSparse() bool
}

// ─────────────────────────────────────────────────────────────────────────────
// Dense
// ─────────────────────────────────────────────────────────────────────────────

// Dense is a row-major rows × cols matrix.
type Dense[T Element] struct {
	rows, cols int
	Data       []T
}

// NewDense allocates a zeroed rows × cols matrix.
func NewDense[T Element](rows, cols int) *Dense[T] {
	return &Dense[T]{rows: rows, cols: cols, Data: make([]T, rows*cols)}
}

func (d *Dense[T]) Rows() int      { return d.rows }
func (d *Dense[T]) Cols() int      { return d.cols }
func (d *Dense[T]) DType() DType   { return DTypeOf[T]() }
func (d *Dense[T]) IsSparse() bool { return false }

// Row returns row i as a slice aliasing the backing array.
func (d *Dense[T]) Row(i int) []T {
	return d.Data[i*d.cols : (i+1)*d.cols]
}

func (d *Dense[T]) At(i, j int) uint32 {
	d.check(i, j)
	return uint32(d.Data[i*d.cols+j])
}

// Set writes element (i, j).
func (d *Dense[T]) Set(i, j int, v T) {
	d.check(i, j)
	d.Data[i*d.cols+j] = v
}

func (d *Dense[T]) NNZ() int {
	n := 0
	for _, v := range d.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

func (d *Dense[T]) check(i, j int) {
	if i < 0 || i >= d.rows || j < 0 || j >= d.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for %dx%d", i, j, d.rows, d.cols))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CSR
// ─────────────────────────────────────────────────────────────────────────────

// CSR is a compressed sparse row matrix. Row i owns
// Indices[Indptr[i]:Indptr[i+1]] (strictly increasing) and the matching Data.
// Only non-zero values are stored.
type CSR[T Element] struct {
	rows, cols int
	Indptr     []int
	Indices    []int
	Data       []T
}

// NewCSR returns an empty CSR with cols columns, ready for AppendRow.
func NewCSR[T Element](cols int) *CSR[T] {
	return &CSR[T]{cols: cols, Indptr: []int{0}}
}

func (c *CSR[T]) Rows() int      { return c.rows }
func (c *CSR[T]) Cols() int      { return c.cols }
func (c *CSR[T]) DType() DType   { return DTypeOf[T]() }
func (c *CSR[T]) IsSparse() bool { return true }
func (c *CSR[T]) NNZ() int       { return len(c.Data) }

// AppendRow appends a row given as a dense vector; zeros are dropped.
func (c *CSR[T]) AppendRow(row []T) {
	for j, v := range row {
		if v != 0 {
			c.Indices = append(c.Indices, j)
			c.Data = append(c.Data, v)
		}
	}
	c.Indptr = append(c.Indptr, len(c.Data))
	c.rows++
}

// AppendZeroRow appends an empty row.
func (c *CSR[T]) AppendZeroRow() {
	c.Indptr = append(c.Indptr, len(c.Data))
	c.rows++
}

func (c *CSR[T]) At(i, j int) uint32 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for %dx%d", i, j, c.rows, c.cols))
	}
	lo, hi := c.Indptr[i], c.Indptr[i+1]
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch {
		case c.Indices[mid] == j:
			return uint32(c.Data[mid])
		case c.Indices[mid] < j:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// ToDense expands c into a Dense of the same element type.
func (c *CSR[T]) ToDense() *Dense[T] {
	d := NewDense[T](c.rows, c.cols)
	for i := 0; i < c.rows; i++ {
		row := d.Row(i)
		for k := c.Indptr[i]; k < c.Indptr[i+1]; k++ {
			row[c.Indices[k]] = c.Data[k]
		}
	}
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers over the Matrix interface
// ─────────────────────────────────────────────────────────────────────────────

// Equal reports whether a and b have the same shape and elements, regardless
// of representation or element type.
func Equal(a, b Matrix) bool {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			if a.At(i, j) != b.At(i, j) {
				return false
			}
		}
	}
	return true
}

// RowValues copies row i of m into a new slice.
func RowValues(m Matrix, i int) []uint32 {
	out := make([]uint32, m.Cols())
	for j := range out {
		out[j] = m.At(i, j)
	}
	return out
}
