package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a thumbnail size. A dimension of -1 is derived from the other one
// preserving the aspect ratio.
type Size struct {
	Width  int
	Height int
}

// DefaultThumbnailSize is 320 pixels wide with proportional height.
var DefaultThumbnailSize = Size{Width: 320, Height: -1}

// ParseSize parses WIDTHxHEIGHT.
func ParseSize(value string) (Size, error) {
	width, height, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid size %q: use WIDTHxHEIGHT", value)
	}
	w, err := strconv.Atoi(width)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: width: %w", value, err)
	}
	h, err := strconv.Atoi(height)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: height: %w", value, err)
	}
	size := Size{Width: w, Height: h}
	if err := size.validate(); err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", value, err)
	}
	return size, nil
}

func (s Size) validate() error {
	if s.Width == -1 && s.Height == -1 {
		return fmt.Errorf("only one dimension may be -1")
	}
	if (s.Width <= 0 && s.Width != -1) || (s.Height <= 0 && s.Height != -1) {
		return fmt.Errorf("dimensions must be positive or -1")
	}
	return nil
}

// String implements fmt.Stringer.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Set implements pflag.Value so sizes can be used as command line flags.
func (s *Size) Set(value string) error {
	parsed, err := ParseSize(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Size) Type() string {
	return "size"
}
