// Package matrix holds the output containers of a fingerprint transform: a
// row-major dense matrix and a compressed sparse row matrix, both generic over
// an unsigned element type chosen to fit the largest value a fingerprint can
// produce.
package matrix

import "fmt"

// Element is the set of element types an output matrix may carry.
type Element interface {
	~uint8 | ~uint16 | ~uint32
}

// DType identifies the element type of a Matrix at runtime.
type DType int

const (
	Uint8 DType = iota + 1
	Uint16
	Uint32
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Max returns the largest value representable by d.
func (d DType) Max() uint64 {
	switch d {
	case Uint8:
		return 0xFF
	case Uint16:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

// DTypeFor returns the smallest element type able to hold maxValue.
func DTypeFor(maxValue uint64) DType {
	switch {
	case maxValue <= Uint8.Max():
		return Uint8
	case maxValue <= Uint16.Max():
		return Uint16
	default:
		return Uint32
	}
}

// DTypeOf returns the DType matching the type parameter T.
func DTypeOf[T Element]() DType {
	var zero T
	return DTypeFor(uint64(^zero))
}

// Convert narrows v to T. ok is false when v does not fit.
func Convert[T Element](v uint32) (t T, ok bool) {
	var zero T
	if uint64(v) > uint64(^zero) {
		return zero, false
	}
	return T(v), true
}
