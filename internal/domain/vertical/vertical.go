package vertical

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/gxbriex/clips/internal/types"
)

const (
	// Padding is added on both sides of an excerpt so speech is not clipped.
	Padding = 0.5
	// FadeDuration applies to both the fade-in and the fade-out.
	FadeDuration = 0.3

	maxTitleRunes = 30
)

// Rounding selects how odd crop dimensions are made even for the encoder.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "down":
		return RoundDown, nil
	case "up":
		return RoundUp, nil
	default:
		return RoundDown, fmt.Errorf("unknown crop rounding %q (want down or up)", s)
	}
}

func (r Rounding) String() string {
	if r == RoundUp {
		return "up"
	}
	return "down"
}

var ErrSourceTooNarrow = errors.New("source is narrower than a 9:16 crop")

// PadWindow widens [start, end] by Padding, clamped to [0, duration].
func PadWindow(start, end, duration float64) types.Window {
	return types.Window{
		Start: math.Max(0, start-Padding),
		End:   math.Min(duration, end+Padding),
	}
}

// CenterCrop computes a horizontally centered 9:16 crop of a w x h frame.
func CenterCrop(w, h int, r Rounding) (types.Crop, error) {
	if w <= 0 || h <= 0 {
		return types.Crop{}, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	cw := even(h*9/16, r)
	ch := even(h, r)
	if r == RoundUp && ch > h {
		// cannot grow past the frame vertically
		ch = h - h%2
	}
	if cw > w {
		return types.Crop{}, fmt.Errorf("%w: %dx%d needs width %d", ErrSourceTooNarrow, w, h, cw)
	}
	if cw <= 0 || ch <= 0 {
		return types.Crop{}, fmt.Errorf("frame %dx%d too small to crop", w, h)
	}
	return types.Crop{Width: cw, Height: ch, X: (w - cw) / 2, Y: 0}, nil
}

func even(n int, r Rounding) int {
	if n%2 == 0 {
		return n
	}
	if r == RoundUp {
		return n + 1
	}
	return n - 1
}

// ValidateExcerpt rejects model output that cannot be cut from a video of the
// given duration.
func ValidateExcerpt(e types.Excerpt, duration float64) error {
	for _, v := range []float64{e.Start, e.End} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite time in excerpt %q", e.Title)
		}
	}
	if e.Start < 0 {
		return fmt.Errorf("excerpt %q starts before 0 (%.2f)", e.Title, e.Start)
	}
	if e.End <= e.Start {
		return fmt.Errorf("excerpt %q ends before it starts (%.2f -> %.2f)", e.Title, e.Start, e.End)
	}
	if duration > 0 && e.Start >= duration {
		return fmt.Errorf("excerpt %q starts after the video ends (%.2f >= %.2f)", e.Title, e.Start, duration)
	}
	return nil
}

// SafeTitle keeps letters, digits, spaces and hyphens, cut to 30 runes.
func SafeTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n >= maxTitleRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

// ClipFileName derives the output name from the 1-based index and the title.
func ClipFileName(i int, title string) string {
	return fmt.Sprintf("clip_%02d_%s.mp4", i, SafeTitle(title))
}
