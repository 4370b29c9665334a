package fingerprint

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hashInts hashes a sequence of integers with xxhash.
func hashInts(vals ...uint64) uint64 {
	buf := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	return xxhash.Sum64(buf)
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// signed folds a possibly negative int into the hash domain.
func signed(v int) uint64 { return uint64(int64(v)) }

// fold sets or increments the element selected by h.
func fold(out []uint32, h uint64, count bool) {
	idx := h % uint64(len(out))
	if count {
		out[idx]++
		return
	}
	out[idx] = 1
}
