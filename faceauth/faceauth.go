package faceauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	sferrors "github.com/randalmurphal/storyflow/errors"
	"github.com/randalmurphal/storyflow/metrics"
)

// DefaultTolerance is the largest encoding distance still judged a match.
const DefaultTolerance = 0.6

// ErrDimensionMismatch is returned when two encodings have different lengths.
var ErrDimensionMismatch = errors.New("faceauth: encoding dimensions differ")

// Encoding is a face embedding vector.
type Encoding []float64

// Encoder extracts one encoding per face found in an image. An image with
// no faces yields an empty slice or an error wrapping errors.ErrNoFace.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]Encoding, error)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Encoding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Compare reports whether candidate is within tolerance of known.
func Compare(known, candidate Encoding, tolerance float64) (bool, error) {
	d, err := Distance(known, candidate)
	if err != nil {
		return false, err
	}
	return d <= tolerance, nil
}

// Authenticator verifies that two images show the same person.
type Authenticator struct {
	encoder   Encoder
	tolerance float64
	logger    *slog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTolerance sets the match tolerance. Non-positive values keep the default.
func WithTolerance(t float64) Option {
	return func(a *Authenticator) {
		if t > 0 {
			a.tolerance = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// NewAuthenticator creates an Authenticator around enc.
func NewAuthenticator(enc Encoder, opts ...Option) *Authenticator {
	a := &Authenticator{
		encoder:   enc,
		tolerance: DefaultTolerance,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Verify compares the first face in reference with the first face in
// candidate. When either image has no face the result is false with a nil
// error; encoder failures are returned.
func (a *Authenticator) Verify(ctx context.Context, reference, candidate []byte) (bool, error) {
	known, err := a.firstFace(ctx, "reference", reference)
	if err != nil {
		return a.noFace(err)
	}
	unknown, err := a.firstFace(ctx, "candidate", candidate)
	if err != nil {
		return a.noFace(err)
	}

	match, err := Compare(known, unknown, a.tolerance)
	if err != nil {
		metrics.RecordFaceVerification("error")
		return false, err
	}

	a.logger.Info("face verified", "match", match, "tolerance", a.tolerance)
	if match {
		metrics.RecordFaceVerification("match")
	} else {
		metrics.RecordFaceVerification("mismatch")
	}
	return match, nil
}

func (a *Authenticator) firstFace(ctx context.Context, which string, image []byte) (Encoding, error) {
	encs, err := a.encoder.Encode(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", which, err)
	}
	if len(encs) == 0 {
		return nil, fmt.Errorf("%s: %w", which, sferrors.ErrNoFace)
	}
	return encs[0], nil
}

func (a *Authenticator) noFace(err error) (bool, error) {
	if errors.Is(err, sferrors.ErrNoFace) {
		a.logger.Warn("no face found", "error", err)
		metrics.RecordFaceVerification("no_face")
		return false, nil
	}
	metrics.RecordFaceVerification("error")
	return false, err
}
