// Copyright © 2016, The T Authors.

package viewport

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// fontFace is golang.org/x/image/font.Face, aliased so the rest of
// the package need not import the font package directly.
type fontFace = font.Face

// defaultFace is used whenever a Viewport has no face installed via
// SetFace, grounded on the teacher's ui/font.go falling back to a
// bundled default when no TTF can be loaded; basicfont.Face7x13
// plays that role here since this package carries no TTF asset of
// its own.
var defaultFace fontFace = basicfont.Face7x13
