package descriptors

import "fmt"

type BinaryCodedDecimal uint16

// String renders the version as "major.minor", e.g. "1.10".
func (bcd BinaryCodedDecimal) String() string {
	return fmt.Sprintf("%x.%02x", uint16(bcd)>>8, uint16(bcd)&0xff)
}
