package parser

import (
	_ "embed"

	"github.com/lemonberrylabs/unitconv/pkg/units"
)

//go:embed standard.yaml
var standardSource []byte

// StandardSource returns the standard catalog document.
func StandardSource() []byte {
	out := make([]byte, len(standardSource))
	copy(out, standardSource)
	return out
}

// Standard returns the units of the standard catalog.
func Standard() ([]units.Unit, error) {
	return Parse(standardSource)
}
