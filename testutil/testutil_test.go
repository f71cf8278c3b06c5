package testutil

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"testing"
	"time"


	"github.com/randalmurphal/storyflow/agent"
	"github.com/randalmurphal/storyflow/task"
)

func TestTempFile(t *testing.T) {
	content := "test content"
	path := TempFileString(t, "nested/test.txt", content)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}

	if string(data) != content {
		t.Errorf("content = %q, want %q", string(data), content)
	}
}

func TestTestContext(t *testing.T) {
	ctx := TestContext(t)

	select {
	case <-ctx.Done():
		t.Error("context is already done")
	default:
	}
}

func TestTestContextWithTimeout(t *testing.T) {
	ctx := TestContextWithTimeout(t, 50*time.Millisecond)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("context should be done after timeout")
	}
}

func TestCancelableContext(t *testing.T) {
	ctx, cancel := CancelableContext(t)
	cancel()

	select {
	case <-ctx.Done():
	default:
		t.Error("context should be done after cancel")
	}
}

func TestEncodeImage_RoundTrip(t *testing.T) {
	for _, format := range []string{"jpeg", "png", "gif", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			data := EncodeImage(t, Gradient(40, 20), format)

			cfg, got, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("DecodeConfig() error = %v", err)
			}
			if got != format {
				t.Errorf("format = %q, want %q", got, format)
			}
			if cfg.Width != 40 || cfg.Height != 20 {
				t.Errorf("size = %dx%d, want 40x20", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestStubWriter(t *testing.T) {
	w := NewStubWriter()
	ctx := context.Background()

	if _, err := w.Plot(ctx, agent.Brief{Concept: "c"}); err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	first, _ := w.Review(ctx, task.Director, agent.Brief{})
	second, _ := w.Review(ctx, task.Director, agent.Brief{})

	if first != "director review 1" || second != "director review 2" {
		t.Errorf("reviews = %q, %q", first, second)
	}
	if got := w.Methods(); len(got) != 3 || got[0] != "plot" {
		t.Errorf("Methods() = %v", got)
	}
	if w.Calls()[0].Brief.Concept != "c" {
		t.Error("brief should be recorded")
	}
}

func TestStubWriter_FailOn(t *testing.T) {
	boom := errors.New("boom")
	w := NewStubWriter().FailOn("theme", boom)

	if _, err := w.Theme(context.Background(), agent.Brief{}); !errors.Is(err, boom) {
		t.Errorf("Theme() error = %v, want boom", err)
	}
	if w.Count("theme") != 1 {
		t.Error("failed call should still be recorded")
	}
}
