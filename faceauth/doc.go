// Package faceauth verifies that a selfie matches a reference photo.
//
// Face detection and embedding are delegated to an Encoder; RemoteEncoder
// calls an HTTP encoding service. Two faces match when the Euclidean
// distance between their encodings is at most the tolerance (0.6 by
// default). An image with no face is not an error: Verify logs it and
// reports no match.
package faceauth
