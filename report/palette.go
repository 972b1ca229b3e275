package report

import (
	"fmt"

	"github.com/fatih/color"
)

// Palette decorates console text. The plain palette leaves text unchanged, so the report code
// does not depend on any terminal capabilities.
type Palette struct {
	Pass    func(a ...interface{}) string
	Fail    func(a ...interface{}) string
	Skip    func(a ...interface{}) string
	Heading func(a ...interface{}) string
}

// Glyphs used to mark test outcomes.
const (
	PassGlyph = "✓"
	FailGlyph = "✗"
	SkipGlyph = "-"
)

func PlainPalette() Palette {
	return Palette{Pass: fmt.Sprint, Fail: fmt.Sprint, Skip: fmt.Sprint, Heading: fmt.Sprint}
}

// ColorPalette uses terminal colors. The color package turns itself off if the output is not
// a terminal or NO_COLOR is set.
func ColorPalette() Palette {
	return Palette{
		Pass:    color.New(color.FgGreen).SprintFunc(),
		Fail:    color.New(color.FgRed, color.Bold).SprintFunc(),
		Skip:    color.New(color.FgYellow).SprintFunc(),
		Heading: color.New(color.Bold).SprintFunc(),
	}
}

// PaletteFor returns ColorPalette if colors are wanted, otherwise PlainPalette.
func PaletteFor(useColor bool) Palette {
	if useColor {
		return ColorPalette()
	}
	return PlainPalette()
}
