package faceauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	sferrors "github.com/randalmurphal/storyflow/errors"
	sfhttp "github.com/randalmurphal/storyflow/http"
)

// Encoding service paths.
const (
	EncodePath = "/encode"
	HealthPath = "/health"
)

// RemoteEncoder calls an HTTP encoding service. The service accepts the
// raw image as the request body and answers {"encodings": [[...], ...]}.
type RemoteEncoder struct {
	client  *sfhttp.Client
	baseURL string
}

type encodeResponse struct {
	Encodings []Encoding `json:"encodings"`
}

// NewRemoteEncoder creates an encoder for the service at baseURL.
func NewRemoteEncoder(baseURL string, logger *slog.Logger) *RemoteEncoder {
	client := sfhttp.NewClient(sfhttp.ClientConfig{
		BaseURL:     baseURL,
		ServiceName: "face-encoder",
		Logger:      logger,
	})
	return &RemoteEncoder{client: client, baseURL: baseURL}
}

// NewRemoteEncoderWithClient wraps an existing client.
func NewRemoteEncoderWithClient(client *sfhttp.Client) *RemoteEncoder {
	return &RemoteEncoder{client: client, baseURL: "face-encoder"}
}

// Encode implements Encoder. An image the service refuses to decode is
// reported as errors.ErrUnsupportedFormat.
func (r *RemoteEncoder) Encode(ctx context.Context, image []byte) ([]Encoding, error) {
	var resp encodeResponse
	body := sfhttp.RawBody(http.DetectContentType(image), image)
	if err := r.client.PostBody(ctx, EncodePath, body, &resp); err != nil {
		return nil, r.classify(err)
	}
	return resp.Encodings, nil
}

// Ping checks that the encoding service answers its health endpoint.
func (r *RemoteEncoder) Ping(ctx context.Context) error {
	if err := r.client.Get(ctx, HealthPath, nil); err != nil {
		return r.classify(err)
	}
	return nil
}

func (r *RemoteEncoder) classify(err error) error {
	switch {
	case errors.Is(err, sfhttp.ErrBadRequest):
		return fmt.Errorf("%w: %w", sferrors.ErrUnsupportedFormat, err)
	case sfhttp.IsUnauthorized(err):
		return sferrors.WrapAuthError(fmt.Errorf("%w: %w", sferrors.ErrNotAuthenticated, err))
	case sfhttp.IsNotFound(err):
		return fmt.Errorf("%w: no encoding service at %s: %w", sferrors.ErrInvalidConfig, r.baseURL, err)
	default:
		return sferrors.WrapConnectionError(err, r.baseURL)
	}
}
