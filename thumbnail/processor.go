package thumbnail

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	sferrors "github.com/randalmurphal/storyflow/errors"
	"github.com/randalmurphal/storyflow/metrics"
	"github.com/randalmurphal/storyflow/objstore"
)

// DefaultPercent is the thumbnail size relative to the source.
const DefaultPercent = 50

// Prefix marks thumbnails written beside their source.
const Prefix = "thumbnail_"

// Result describes what happened to one source object.
type Result struct {
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Dest    string `json:"dest,omitempty"` // "bucket/key" of the thumbnail
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Processor turns one source object into a thumbnail.
type Processor interface {
	Process(ctx context.Context, ref ObjectRef) (Result, error)
}

// =============================================================================
// Mirror - thumbnail into a separate bucket
// =============================================================================

// Mirror writes the thumbnail of bucket/key to DestBucket/key.
type Mirror struct {
	store      objstore.Store
	destBucket string
	percent    int
	logger     *slog.Logger
}

// NewMirror creates a Mirror. An empty destination bucket is a
// configuration error.
func NewMirror(store objstore.Store, destBucket string, percent int, logger *slog.Logger) (*Mirror, error) {
	if destBucket == "" {
		return nil, sferrors.NewMissingConfigError("processed_bucket")
	}
	return &Mirror{
		store:      store,
		destBucket: destBucket,
		percent:    orDefault(percent),
		logger:     orDefaultLogger(logger),
	}, nil
}

// Process implements Processor.
func (m *Mirror) Process(ctx context.Context, ref ObjectRef) (Result, error) {
	res := Result{Bucket: ref.Bucket, Key: ref.Key}
	if ref.Bucket == m.destBucket {
		// the upload would trigger another event for the same bucket
		return m.skip(res, "source is the processed bucket"), nil
	}

	dest := objstore.Object{Bucket: m.destBucket, Key: ref.Key}
	return write(ctx, m.store, m.logger, m.percent, res, dest)
}

func (m *Mirror) skip(res Result, reason string) Result {
	m.logger.Info("thumbnail skipped", "bucket", res.Bucket, "key", res.Key, "reason", reason)
	metrics.RecordThumbnail("skipped")
	res.Skipped, res.Reason = true, reason
	return res
}

// =============================================================================
// Prefixer - thumbnail beside the source
// =============================================================================

// Prefixer writes the thumbnail of bucket/dir/name to bucket/dir/thumbnail_name.
type Prefixer struct {
	store   objstore.Store
	percent int
	logger  *slog.Logger
}

// NewPrefixer creates a Prefixer.
func NewPrefixer(store objstore.Store, percent int, logger *slog.Logger) *Prefixer {
	return &Prefixer{
		store:   store,
		percent: orDefault(percent),
		logger:  orDefaultLogger(logger),
	}
}

// PrefixedKey returns the thumbnail key for key.
func PrefixedKey(key string) string {
	dir, name := path.Split(key)
	return dir + Prefix + name
}

// Process implements Processor. Objects whose name already carries the
// prefix are skipped.
func (p *Prefixer) Process(ctx context.Context, ref ObjectRef) (Result, error) {
	res := Result{Bucket: ref.Bucket, Key: ref.Key}

	if _, name := path.Split(ref.Key); strings.HasPrefix(name, Prefix) {
		p.logger.Info("thumbnail skipped, already resized", "bucket", ref.Bucket, "key", ref.Key)
		metrics.RecordThumbnail("skipped")
		res.Skipped, res.Reason = true, "already resized"
		return res, nil
	}

	dest := objstore.Object{Bucket: ref.Bucket, Key: PrefixedKey(ref.Key)}
	return write(ctx, p.store, p.logger, p.percent, res, dest)
}

// =============================================================================
// Helpers
// =============================================================================

// write downloads the source, scales it and uploads it as dest.
func write(ctx context.Context, store objstore.Store, logger *slog.Logger, percent int, res Result, dest objstore.Object) (Result, error) {
	src, err := store.Get(ctx, res.Bucket, res.Key)
	if err != nil {
		metrics.RecordThumbnail("error")
		return res, fmt.Errorf("download %s/%s: %w", res.Bucket, res.Key, err)
	}

	data, format, err := Transform(src.Data, percent)
	if err != nil {
		metrics.RecordThumbnail("error")
		return res, fmt.Errorf("resize %s/%s: %w", res.Bucket, res.Key, err)
	}

	dest.Data = data
	dest.ContentType = ContentType(format)
	if err := store.Put(ctx, dest); err != nil {
		metrics.RecordThumbnail("error")
		return res, fmt.Errorf("upload %s/%s: %w", dest.Bucket, dest.Key, err)
	}

	res.Dest = dest.Bucket + "/" + dest.Key
	logger.Info("thumbnail created",
		"source", res.Bucket+"/"+res.Key,
		"dest", res.Dest,
		"format", format,
		"bytes", len(data),
	)
	metrics.RecordThumbnail("created")
	return res, nil
}

// ProcessAll runs p over every ref. Failures are reported in the result
// and do not stop the batch.
func ProcessAll(ctx context.Context, p Processor, refs []ObjectRef) []Result {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		res, err := p.Process(ctx, ref)
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func orDefault(percent int) int {
	if percent <= 0 {
		return DefaultPercent
	}
	return percent
}

func orDefaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
