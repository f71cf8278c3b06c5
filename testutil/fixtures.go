// Package testutil provides utilities for testing.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/randalmurphal/storyflow/story"
)

// TempFile creates a temporary file with the given content.
// Returns the file path. File is automatically cleaned up when the test ends.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create temp dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to create temp file %s: %v", name, err)
	}

	return path
}

// TempFileString creates a temporary file with string content.
func TempFileString(t *testing.T, name, content string) string {
	t.Helper()
	return TempFile(t, name, []byte(content))
}

// =============================================================================
// Image Fixtures
// =============================================================================

// Gradient returns a w x h RGBA image with a horizontal gradient, so scaled
// output is not uniform.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8(x * 255 / max(w-1, 1))
			img.Set(x, y, color.RGBA{R: v, G: 128, B: 255 - v, A: 255})
		}
	}
	return img
}

// EncodeImage encodes img in format: jpeg, png, gif, bmp or tiff.
func EncodeImage(t *testing.T, img image.Image, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		t.Fatalf("unsupported fixture format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s fixture: %v", format, err)
	}
	return buf.Bytes()
}

// =============================================================================
// Story Fixtures
// =============================================================================

// SamplePlot returns a small complete plot.
func SamplePlot() story.Plot {
	return story.Plot{
		Premise:       "A lighthouse keeper receives letters from a drowned town",
		Synopsis:      "Mara answers the letters and learns the town is asking to be remembered.",
		Setting:       "A storm-bound island off the Breton coast",
		TurningPoints: []string{"The first letter", "The keeper's lamp fails", "The town surfaces"},
		Resolution:    "Mara records every name before the tide returns.",
	}
}

// SampleCharacters returns a two-person cast.
func SampleCharacters() []story.Character {
	return []story.Character{
		{Name: "Mara", Role: "protagonist", Background: "Former archivist", Arc: "From hiding to witnessing", Personality: "Stubborn, kind"},
		{Name: "Ewen", Role: "antagonist", Background: "Harbor master", Arc: "From denial to grief", Personality: "Proud"},
	}
}

// SampleTheme returns a theme record.
func SampleTheme() story.Theme {
	return story.Theme{
		MainTheme: "Memory as duty",
		Moral:     "What we refuse to remember returns",
		Subthemes: []string{"isolation", "inheritance"},
	}
}

// SampleScreenplay returns a three act outline.
func SampleScreenplay() story.Screenplay {
	return story.Screenplay{
		Acts:      []string{"Arrival", "Correspondence", "Flood"},
		KeyScenes: []string{"The first letter arrives dry"},
		Dialogue:  []string{"MARA: Who keeps writing?"},
	}
}

// SampleMarketAnalysis returns a market analysis record.
func SampleMarketAnalysis() story.MarketAnalysis {
	return story.MarketAnalysis{
		TargetAudience:      []string{"adult drama audiences"},
		GenrePositioning:    "Atmospheric folk drama",
		UniqueSellingPoints: []string{"epistolary ghost story"},
		Comparisons:         []string{"The Lighthouse", "Atlantics"},
	}
}
