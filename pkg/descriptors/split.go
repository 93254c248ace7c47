package descriptors

import (
	"fmt"
	"iter"
)

// Blocks iterates over the length prefixed descriptors packed in buf. Iteration
// stops with an error at the first block whose length is zero or overruns buf.
func Blocks(buf []byte) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for i := 0; i < len(buf); {
			n := int(buf[i])
			if n < 2 || i+n > len(buf) {
				yield(nil, fmt.Errorf("descriptor at offset %d: length %d: %w", i, n, ErrInvalidDescriptor))
				return
			}
			if !yield(buf[i:i+n], nil) {
				return
			}
			i += n
		}
	}
}
