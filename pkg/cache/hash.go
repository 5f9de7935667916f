package cache

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash computes the xxhash64 of data as a 16-character hex string.
// It is stable across processes and platforms but not cryptographic.
func Hash(data []byte) string {
	return hexUint64(xxhash.Sum64(data))
}

func hexUint64(v uint64) string {
	s := strconv.FormatUint(v, 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
