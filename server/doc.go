// Package server is the HTTP surface of the media service.
//
// Routes:
//
//	GET  /healthz
//	GET  /metrics
//	POST /v1/faces/verify        multipart "reference" and "candidate" images
//	POST /v1/thumbnails/events   S3 or storage-trigger event JSON
//
// When a JWT secret is configured every /v1 route requires a bearer token
// carrying the route's scope.
package server
