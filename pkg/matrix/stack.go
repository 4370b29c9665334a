package matrix

// VStackDense concatenates blocks vertically in the order given. All blocks
// must have cols columns.
func VStackDense[T Element](cols int, blocks []*Dense[T]) *Dense[T] {
	rows := 0
	for _, b := range blocks {
		rows += b.rows
	}
	out := NewDense[T](rows, cols)
	off := 0
	for _, b := range blocks {
		copy(out.Data[off:], b.Data)
		off += len(b.Data)
	}
	return out
}

// VStackCSR concatenates CSR blocks vertically in the order given. The row
// pointers of each block are shifted by the number of non-zeros already
// emitted; no block is densified.
func VStackCSR[T Element](cols int, blocks []*CSR[T]) *CSR[T] {
	nnz, rows := 0, 0
	for _, b := range blocks {
		nnz += len(b.Data)
		rows += b.rows
	}
	out := &CSR[T]{
		rows:    rows,
		cols:    cols,
		Indptr:  make([]int, 1, rows+1),
		Indices: make([]int, 0, nnz),
		Data:    make([]T, 0, nnz),
	}
	for _, b := range blocks {
		base := len(out.Data)
		for _, p := range b.Indptr[1:] {
			out.Indptr = append(out.Indptr, base+p)
		}
		out.Indices = append(out.Indices, b.Indices...)
		out.Data = append(out.Data, b.Data...)
	}
	return out
}
