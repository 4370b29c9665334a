package matrix_test

import (
	"bytes"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/pkg/matrix"
)

func TestDTypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		max  uint64
		want matrix.DType
	}{
		{1, matrix.Uint8},
		{255, matrix.Uint8},
		{256, matrix.Uint16},
		{65535, matrix.Uint16},
		{65536, matrix.Uint32},
		{1 << 32, matrix.Uint32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matrix.DTypeFor(tt.max), "max=%d", tt.max)
	}
	assert.Equal(t, matrix.Uint8, matrix.DTypeOf[uint8]())
	assert.Equal(t, matrix.Uint32, matrix.DTypeOf[uint32]())
	assert.Equal(t, "uint16", matrix.Uint16.String())
}

func TestConvert_RangeChecked(t *testing.T) {
	t.Parallel()

	v, ok := matrix.Convert[uint8](255)
	assert.True(t, ok)
	assert.Equal(t, uint8(255), v)

	_, ok = matrix.Convert[uint8](256)
	assert.False(t, ok)

	_, ok = matrix.Convert[uint16](70000)
	assert.False(t, ok)
}

func sampleRows() [][]uint8 {
	return [][]uint8{
		{0, 1, 0, 2},
		{0, 0, 0, 0},
		{3, 0, 0, 1},
	}
}

func TestCSR_AppendAndAt(t *testing.T) {
	t.Parallel()

	c := matrix.NewCSR[uint8](4)
	for _, r := range sampleRows() {
		c.AppendRow(r)
	}
	require.Equal(t, 3, c.Rows())
	assert.Equal(t, []int{0, 2, 2, 4}, c.Indptr)
	assert.Equal(t, []int{1, 3, 0, 3}, c.Indices)
	assert.Equal(t, []uint8{1, 2, 3, 1}, c.Data)
	assert.Equal(t, 4, c.NNZ())
	assert.Equal(t, uint32(2), c.At(0, 3))
	assert.Equal(t, uint32(0), c.At(1, 2))
	assert.True(t, c.IsSparse())
}

func TestCSR_ToDenseMatchesRows(t *testing.T) {
	t.Parallel()

	c := matrix.NewCSR[uint8](4)
	d := matrix.NewDense[uint8](3, 4)
	for i, r := range sampleRows() {
		c.AppendRow(r)
		copy(d.Row(i), r)
	}
	assert.Equal(t, d.Data, c.ToDense().Data)
	assert.True(t, matrix.Equal(c, d))
}

func TestVStackDense_PreservesOrder(t *testing.T) {
	t.Parallel()

	a := matrix.NewDense[uint16](1, 2)
	a.Set(0, 0, 7)
	b := matrix.NewDense[uint16](2, 2)
	b.Set(1, 1, 9)

	out := matrix.VStackDense(2, []*matrix.Dense[uint16]{a, b})
	require.Equal(t, 3, out.Rows())
	assert.Equal(t, []uint16{7, 0, 0, 0, 0, 9}, out.Data)
}

func TestVStackCSR_ShiftsIndptr(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	a := matrix.NewCSR[uint8](4)
	a.AppendRow(rows[0])
	b := matrix.NewCSR[uint8](4)
	b.AppendRow(rows[1])
	b.AppendRow(rows[2])
	empty := matrix.NewCSR[uint8](4)

	out := matrix.VStackCSR(4, []*matrix.CSR[uint8]{a, empty, b})
	assert.Equal(t, 3, out.Rows())
	assert.Equal(t, []int{0, 2, 2, 4}, out.Indptr)

	whole := matrix.NewCSR[uint8](4)
	for _, r := range rows {
		whole.AppendRow(r)
	}
	assert.Equal(t, whole.Indptr, out.Indptr)
	assert.Equal(t, whole.Indices, out.Indices)
	assert.Equal(t, whole.Data, out.Data)
}

func TestVStack_Empty(t *testing.T) {
	t.Parallel()

	d := matrix.VStackDense[uint8](5, nil)
	assert.Equal(t, 0, d.Rows())
	assert.Equal(t, 5, d.Cols())

	c := matrix.VStackCSR[uint8](5, nil)
	assert.Equal(t, 0, c.Rows())
	assert.Equal(t, []int{0}, c.Indptr)
}

func TestNPYRoundTrip(t *testing.T) {
	t.Parallel()

	d := matrix.NewDense[uint8](2, 3)
	d.Set(0, 1, 1)
	d.Set(1, 2, 4)

	var buf bytes.Buffer
	require.NoError(t, matrix.WriteNPY(&buf, d))

	got, err := matrix.ReadNPY(&buf)
	require.NoError(t, err)
	assert.Equal(t, matrix.Uint8, got.DType())
	assert.Equal(t, 2, got.Rows())
	assert.Equal(t, 3, got.Cols())
	assert.Equal(t, uint32(1), got.At(0, 1))
	assert.Equal(t, uint32(4), got.At(1, 2))
	assert.Equal(t, uint32(0), got.At(1, 0))
}

func TestWriteNPY_KeepsElementType(t *testing.T) {
	t.Parallel()

	d8 := matrix.NewDense[uint8](4, 64)
	d8.Set(3, 63, 200)

	c16 := matrix.NewCSR[uint16](5)
	c16.AppendRow([]uint16{0, 300, 0, 0, 7})
	c16.AppendZeroRow()

	d32 := matrix.NewDense[uint32](1, 2)
	d32.Set(0, 0, 70000)

	tests := []struct {
		name  string
		m     matrix.Matrix
		descr string
		shape string
		width int
	}{
		{"uint8 dense", d8, "|u1", "(4, 64)", 1},
		{"uint16 csr", c16, "<u2", "(2, 5)", 2},
		{"uint32 dense", d32, "<u4", "(1, 2)", 4},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, matrix.WriteNPY(&buf, tt.m))
			raw := buf.Bytes()

			header := string(raw[:bytes.IndexByte(raw, '\n')+1])
			assert.Contains(t, header, "'descr': '"+tt.descr+"'")
			assert.Contains(t, header, "'shape': "+tt.shape)

			data := tt.m.Rows() * tt.m.Cols() * tt.width
			assert.Equal(t, len(header)+data, len(raw))

			got, err := matrix.ReadNPY(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.m.DType(), got.DType())
			require.Equal(t, tt.m.Rows(), got.Rows())
			require.Equal(t, tt.m.Cols(), got.Cols())
			for i := 0; i < got.Rows(); i++ {
				for j := 0; j < got.Cols(); j++ {
					assert.Equal(t, tt.m.At(i, j), got.At(i, j), "(%d, %d)", i, j)
				}
			}
		})
	}
}

func TestReadNPY_RejectsOtherDTypes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []float64{1, 2, 3}))
	_, err := matrix.ReadNPY(&buf)
	assert.Error(t, err)
}

func TestWriteNPY_RejectsEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Error(t, matrix.WriteNPY(&buf, matrix.NewDense[uint8](0, 4)))
}
