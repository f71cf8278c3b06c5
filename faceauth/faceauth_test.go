package faceauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sferrors "github.com/randalmurphal/storyflow/errors"
	sfhttp "github.com/randalmurphal/storyflow/http"
	"github.com/randalmurphal/storyflow/logging"
	"github.com/randalmurphal/storyflow/testutil"
)

// fakeEncoder maps image bytes to canned encodings.
type fakeEncoder struct {
	faces map[string][]Encoding
	err   error
}

func (f fakeEncoder) Encode(ctx context.Context, image []byte) ([]Encoding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.faces[string(image)], nil
}

func TestDistance(t *testing.T) {
	d, err := Distance(Encoding{0, 0}, Encoding{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-9)

	_, err = Distance(Encoding{1}, Encoding{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		candidate Encoding
		want      bool
	}{
		{"identical", Encoding{0, 0}, true},
		{"at tolerance", Encoding{0.6, 0}, true},
		{"beyond tolerance", Encoding{0.61, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(Encoding{0, 0}, tt.candidate, DefaultTolerance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify(t *testing.T) {
	enc := fakeEncoder{faces: map[string][]Encoding{
		"alice":       {{0.1, 0.1, 0.1}},
		"alice-again": {{0.15, 0.1, 0.12}},
		"bob":         {{0.9, 0.8, 0.7}},
		"group":       {{0.12, 0.1, 0.1}, {0.9, 0.8, 0.7}},
		"landscape":   nil,
	}}
	auth := NewAuthenticator(enc, WithLogger(logging.NewTest()))

	tests := []struct {
		name      string
		reference string
		candidate string
		want      bool
	}{
		{"same person", "alice", "alice-again", true},
		{"different person", "alice", "bob", false},
		{"first face of several", "alice", "group", true},
		{"no face in reference", "landscape", "alice", false},
		{"no face in candidate", "alice", "landscape", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Verify(context.Background(), []byte(tt.reference), []byte(tt.candidate))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_NoFaceError(t *testing.T) {
	auth := NewAuthenticator(fakeEncoder{err: sferrors.ErrNoFace}, WithLogger(logging.NewTest()))

	got, err := auth.Verify(context.Background(), []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestVerify_EncoderErrorPropagates(t *testing.T) {
	boom := errors.New("encoder down")
	auth := NewAuthenticator(fakeEncoder{err: boom}, WithLogger(logging.NewTest()))

	_, err := auth.Verify(context.Background(), []byte("a"), []byte("b"))
	assert.ErrorIs(t, err, boom)
}

func TestVerify_MatchesCompare(t *testing.T) {
	enc := fakeEncoder{faces: map[string][]Encoding{
		"origin":  {{0, 0}},
		"edge":    {{0.6, 0}},
		"outside": {{0.61, 0}},
		"short":   {{0}},
	}}
	auth := NewAuthenticator(enc, WithLogger(logging.NewTest()))

	for _, candidate := range []string{"edge", "outside"} {
		want, err := Compare(enc.faces["origin"][0], enc.faces[candidate][0], DefaultTolerance)
		require.NoError(t, err)

		got, err := auth.Verify(context.Background(), []byte("origin"), []byte(candidate))
		require.NoError(t, err)
		assert.Equal(t, want, got, candidate)
	}

	_, err := auth.Verify(context.Background(), []byte("origin"), []byte("short"))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestWithTolerance(t *testing.T) {
	enc := fakeEncoder{faces: map[string][]Encoding{
		"a": {{0, 0}},
		"b": {{0.5, 0}},
	}}

	strict := NewAuthenticator(enc, WithTolerance(0.4), WithLogger(logging.NewTest()))
	got, err := strict.Verify(context.Background(), []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.False(t, got)

	lenient := NewAuthenticator(enc, WithTolerance(-1), WithLogger(logging.NewTest()))
	got, err = lenient.Verify(context.Background(), []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRemoteEncoder(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EncodePath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"encodings": [][]float64{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	enc := NewRemoteEncoder(srv.URL, logging.NewTest())
	encs, err := enc.Encode(context.Background(), []byte("jpeg bytes"))
	require.NoError(t, err)

	assert.Equal(t, []Encoding{{0.1, 0.2, 0.3}}, encs)
	assert.Equal(t, "jpeg bytes", string(gotBody))
}

func TestRemoteEncoder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unreadable image"}`))
	}))
	defer srv.Close()

	client := sfhttp.NewClient(sfhttp.ClientConfig{BaseURL: srv.URL, ServiceName: "face-encoder", MaxRetries: 1})
	_, err := NewRemoteEncoderWithClient(client).Encode(context.Background(), []byte("x"))

	var apiErr *sfhttp.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.ErrorIs(t, err, sferrors.ErrUnsupportedFormat)
	assert.True(t, sferrors.IsMediaError(err))
}

func TestRemoteEncoder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"undecodable image", http.StatusUnprocessableEntity, sferrors.IsMediaError},
		{"rejected credentials", http.StatusUnauthorized, sferrors.IsAuthError},
		{"wrong endpoint", http.StatusNotFound, sferrors.IsConfigError},
		{"overloaded", http.StatusServiceUnavailable, sfhttp.IsRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := sfhttp.NewClient(sfhttp.ClientConfig{
				BaseURL:    srv.URL,
				MaxRetries: 1,
				RetryWait:  time.Millisecond,
			})
			_, err := NewRemoteEncoderWithClient(client).Encode(context.Background(), []byte("x"))
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error class: %v", err)
		})
	}
}

func TestRemoteEncoder_Ping(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	ctx := testutil.TestContextWithTimeout(t, 5*time.Second)
	require.NoError(t, NewRemoteEncoder(healthy.URL, logging.NewTest()).Ping(ctx))

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	err := NewRemoteEncoder(missing.URL, logging.NewTest()).Ping(ctx)
	assert.True(t, sferrors.IsConfigError(err), "got %v", err)
}

func TestRemoteEncoder_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := testutil.CancelableContext(t)
	cancel()

	_, err := NewRemoteEncoder(srv.URL, logging.NewTest()).Encode(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
