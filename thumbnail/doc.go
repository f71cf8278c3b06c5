// Package thumbnail shrinks uploaded images.
//
// Scale uses area interpolation and floors the output size, so a 50%
// thumbnail of a W x H image is W/2 x H/2 in integer division. Transform
// decodes JPEG, PNG, GIF, BMP or TIFF and re-encodes in the same format.
//
// Two processors handle upload events:
//
//   - Mirror writes the thumbnail under the same key in a separate
//     processed bucket.
//   - Prefixer writes dir/thumbnail_<name> beside the source and skips
//     names that already carry the prefix.
//
// Example usage:
//
//	refs, err := thumbnail.ParseEvent(body)
//	mirror, err := thumbnail.NewMirror(store, settings.ProcessedBucket, 50, logger)
//	results := thumbnail.ProcessAll(ctx, mirror, refs)
package thumbnail
