package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Violation is a single structural problem found while validating a description.
type Violation struct {
	Field       string
	Description string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// DescriptorError reports a malformed capability description. Path locates the
// offending entry, e.g. "formats[0].frame_descs[2]".
type DescriptorError struct {
	Path       string
	Violations []Violation
	Err        error
}

func (e *DescriptorError) Error() string {
	var b strings.Builder
	b.WriteString("catalog: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(ErrInvalidDescriptor.Error())
	}
	for _, v := range e.Violations {
		b.WriteString("; ")
		b.WriteString(v.String())
	}
	return b.String()
}

func (e *DescriptorError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidDescriptor
	}
	return e.Err
}

// IndexError is the panic value of out of bounds indexed access. It is a
// programming error in the caller, in the same way an out of range slice index is.
type IndexError struct {
	Kind  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("catalog: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

func checkIndex(kind string, i, n int) {
	if i < 0 || i >= n {
		panic(&IndexError{Kind: kind, Index: i, Len: n})
	}
}
