package matrix

import (
	"io"
	"reflect"

	"github.com/sbinet/npyio"

	"github.com/turtacn/molprint/pkg/errors"
)

// WriteNPY writes m to w in NumPy .npy format, keeping its unsigned element
// type and a (rows, cols) shape. Sparse matrices are densified on the way out.
// An empty matrix is rejected since its column count cannot be carried.
func WriteNPY(w io.Writer, m Matrix) error {
	if m.Rows() == 0 || m.Cols() == 0 {
		return errors.InvalidParam("cannot export an empty matrix")
	}
	var arr any
	switch m.DType() {
	case Uint8:
		arr = npyArray[uint8](m)
	case Uint16:
		arr = npyArray[uint16](m)
	case Uint32:
		arr = npyArray[uint32](m)
	default:
		return errors.Newf(errors.ErrCodeSerialization, "unsupported dtype %s", m.DType())
	}
	if err := npyio.Write(w, arr); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "write npy")
	}
	return nil
}

// npyArray copies m into a [rows][cols]T value. npyio derives the shape from
// nested arrays; a flat slice would be written as (rows*cols,).
func npyArray[T Element](m Matrix) any {
	var zero T
	rowType := reflect.ArrayOf(m.Cols(), reflect.TypeOf(zero))
	arr := reflect.New(reflect.ArrayOf(m.Rows(), rowType)).Elem()

	row := make([]T, m.Cols())
	for i := 0; i < m.Rows(); i++ {
		if d, ok := m.(*Dense[T]); ok {
			copy(row, d.Row(i))
		} else {
			for j := range row {
				row[j] = T(m.At(i, j))
			}
		}
		reflect.Copy(arr.Index(i), reflect.ValueOf(row))
	}
	return arr.Interface()
}

// ReadNPY reads a 2-d unsigned .npy array written by WriteNPY into a Dense
// matrix of the same element type.
func ReadNPY(r io.Reader) (Matrix, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "read npy header")
	}
	shape := nr.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, errors.Newf(errors.ErrCodeSerialization, "expected a 2-d array, got shape %v", shape)
	}
	if nr.Header.Descr.Fortran {
		return nil, errors.New(errors.ErrCodeSerialization, "fortran-ordered arrays are not supported")
	}
	switch descr := nr.Header.Descr.Type; descr {
	case "|u1", "<u1":
		return readDense[uint8](nr, shape)
	case "<u2":
		return readDense[uint16](nr, shape)
	case "<u4":
		return readDense[uint32](nr, shape)
	default:
		return nil, errors.Newf(errors.ErrCodeSerialization, "unsupported npy dtype %q", descr)
	}
}

func readDense[T Element](nr *npyio.Reader, shape []int) (Matrix, error) {
	d := NewDense[T](shape[0], shape[1])
	// npyio decodes into the named unsigned slice types only.
	var err error
	switch data := any(&d.Data).(type) {
	case *[]uint8:
		err = nr.Read(data)
	case *[]uint16:
		err = nr.Read(data)
	case *[]uint32:
		err = nr.Read(data)
	default:
		err = errors.Newf(errors.ErrCodeSerialization, "unsupported element type %s", DTypeOf[T]())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "read npy")
	}
	return d, nil
}
