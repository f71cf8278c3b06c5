package thumbnail

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoObjects is returned for an event that names no object.
var ErrNoObjects = errors.New("event names no objects")

// ObjectRef names one uploaded object.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type s3Event struct {
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// storageEvent is the flat shape sent by storage-trigger functions.
type storageEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ParseEvent extracts the objects named by an S3 event notification, or
// by a flat {"bucket": ..., "name": ...} storage event. S3 keys arrive
// URL-encoded and are decoded. Records other than object creation are
// ignored.
func ParseEvent(body []byte) ([]ObjectRef, error) {
	var ev s3Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	if len(ev.Records) == 0 {
		var flat storageEvent
		if err := json.Unmarshal(body, &flat); err == nil && flat.Bucket != "" && flat.Name != "" {
			return []ObjectRef{{Bucket: flat.Bucket, Key: flat.Name}}, nil
		}
		return nil, ErrNoObjects
	}

	var refs []ObjectRef
	for _, rec := range ev.Records {
		if rec.EventName != "" && !strings.HasPrefix(rec.EventName, "ObjectCreated:") {
			continue
		}
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rec.S3.Object.Key, err)
		}
		if rec.S3.Bucket.Name == "" || key == "" {
			continue
		}
		refs = append(refs, ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key})
	}

	if len(refs) == 0 {
		return nil, ErrNoObjects
	}
	return refs, nil
}
