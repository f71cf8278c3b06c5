// Package auth issues and checks the bearer tokens of the media API.
//
// Tokens are HS256 JWTs carrying a list of scopes:
//
//	cfg := auth.JWTConfig{Secret: []byte(settings.JWTSecret)}
//	token, err := auth.IssueToken(cfg, "thumbnail-lambda", auth.ScopeThumbnailsProcess)
//
// On the server, Middleware validates the token and RequireScope guards a
// route:
//
//	r.Use(auth.Middleware(cfg))
//	r.With(auth.RequireScope(auth.ScopeFacesVerify)).Post("/faces/verify", h)
package auth
