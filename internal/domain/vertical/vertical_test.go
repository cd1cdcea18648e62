package vertical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxbriex/clips/internal/types"
)

func TestPadWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		duration   float64
		want       types.Window
	}{
		{"inside", 10, 50, 1000, types.Window{Start: 9.5, End: 50.5}},
		{"end capped", 10, 50, 40, types.Window{Start: 9.5, End: 40}},
		{"start floored", 0.2, 30, 1000, types.Window{Start: 0, End: 30.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadWindow(tt.start, tt.end, tt.duration)
			assert.InDelta(t, tt.want.Start, got.Start, 1e-9)
			assert.InDelta(t, tt.want.End, got.End, 1e-9)
		})
	}
}

func TestCenterCrop_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		rounding Rounding
		want     types.Crop
	}{
		// 1080*9/16 = 607.5 -> 607, odd
		{"1080p down", 1920, 1080, RoundDown, types.Crop{Width: 606, Height: 1080, X: 657}},
		{"1080p up", 1920, 1080, RoundUp, types.Crop{Width: 608, Height: 1080, X: 656}},
		// 1920*9/16 = 1080, already even
		{"portrait down", 1080, 1920, RoundDown, types.Crop{Width: 1080, Height: 1920, X: 0}},
		{"portrait up", 1080, 1920, RoundUp, types.Crop{Width: 1080, Height: 1920, X: 0}},
		// 720*9/16 = 405 -> 404 / 406
		{"720p down", 1280, 720, RoundDown, types.Crop{Width: 404, Height: 720, X: 438}},
		{"720p up", 1280, 720, RoundUp, types.Crop{Width: 406, Height: 720, X: 437}},
		// odd height is trimmed, never grown past the frame
		{"odd height up", 1920, 1081, RoundUp, types.Crop{Width: 608, Height: 1080, X: 656}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CenterCrop(tt.w, tt.h, tt.rounding)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, got.Width%2)
			assert.Zero(t, got.Height%2)
		})
	}
}

func TestCenterCrop_RejectsNarrowSource(t *testing.T) {
	_, err := CenterCrop(500, 1080, RoundDown)
	require.ErrorIs(t, err, ErrSourceTooNarrow)

	_, err = CenterCrop(0, 1080, RoundDown)
	require.Error(t, err)
}

func TestParseRounding(t *testing.T) {
	r, err := ParseRounding("")
	require.NoError(t, err)
	assert.Equal(t, RoundDown, r)

	r, err = ParseRounding(" UP ")
	require.NoError(t, err)
	assert.Equal(t, RoundUp, r)

	_, err = ParseRounding("sideways")
	assert.Error(t, err)
}

func TestValidateExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		e       types.Excerpt
		wantErr bool
	}{
		{"ok", types.Excerpt{Title: "a", Start: 10, End: 50}, false},
		{"reversed", types.Excerpt{Title: "a", Start: 50, End: 10}, true},
		{"empty span", types.Excerpt{Title: "a", Start: 10, End: 10}, true},
		{"negative", types.Excerpt{Title: "a", Start: -3, End: 10}, true},
		{"past end", types.Excerpt{Title: "a", Start: 120, End: 160}, true},
		{"nan", types.Excerpt{Title: "a", Start: math.NaN(), End: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExcerpt(tt.e, 100)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClipFileName(t *testing.T) {
	assert.Equal(t, "clip_01_ELE REVELA TUDO.mp4", ClipFileName(1, "ELE REVELA TUDO!!!"))
	assert.Equal(t, "clip_07_Ação - parte 2.mp4", ClipFileName(7, "Ação - parte 2?"))

	long := ClipFileName(3, "uma frase muito longa que passa de trinta caracteres")
	assert.Equal(t, "clip_03_uma frase muito longa que pass.mp4", long)
	assert.Equal(t, "clip_12_.mp4", ClipFileName(12, "!!!"))
}
