package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevmo314/go-uvcmonitor/pkg/catalog"
)

func TestPrintCatalog(t *testing.T) {
	cat := catalog.New(
		catalog.NewFormat(catalog.SubtypeMJPEG, 1, 2,
			catalog.NewDiscreteFrame(7, 1920, 1080, 333333, 333333, 666666),
			catalog.NewDiscreteFrame(7, 1280, 720, 333333, 333333),
		),
		catalog.NewFormat(catalog.Subtype(0x10), 2, 1),
	)

	var buf bytes.Buffer
	printCatalog(&buf, "1133-2085", cat)
	out := buf.String()

	assert.Contains(t, out, "=== Device 1133-2085 ===")
	assert.Contains(t, out, "Format 1: MJPEG\n")
	assert.Contains(t, out, "  Default frame 2: 1280x720\n")
	assert.Contains(t, out, "    Discrete intervals: 30 fps 15 fps\n")
	assert.Contains(t, out, "Format 2: Undefined (subtype 0x10)\n")
}

func TestPrintEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, "1-2", catalog.New())
	assert.Equal(t, "=== Device 1-2 ===\nno supported formats\n", buf.String())
}
