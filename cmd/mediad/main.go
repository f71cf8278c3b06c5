// Command mediad serves selfie verification and thumbnail generation.
//
// Usage:
//
//	mediad [flags]                      serve on $PORT (default 8080)
//	mediad token [--scope s] <subject>  issue a bearer token
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/storyflow/auth"
	"github.com/randalmurphal/storyflow/config"
	"github.com/randalmurphal/storyflow/faceauth"
	"github.com/randalmurphal/storyflow/logging"
	"github.com/randalmurphal/storyflow/metrics"
	"github.com/randalmurphal/storyflow/objstore"
	"github.com/randalmurphal/storyflow/server"
	"github.com/randalmurphal/storyflow/thumbnail"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "token" {
		return issueToken(args[1:])
	}

	fs := flag.NewFlagSet("mediad", flag.ContinueOnError)
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	port := fs.String("port", "", "listen port (or set PORT)")
	bucket := fs.String("processed-bucket", "", "bucket thumbnails are written to (or set PROCESSED_BUCKET_NAME)")
	prefix := fs.Bool("prefix", false, "write thumbnails beside the source as thumbnail_<name> instead of mirroring")
	endpoint := fs.String("s3-endpoint", "", "custom S3 endpoint (MinIO, LocalStack)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flags := map[string]string{"port": *port, "processed_bucket": *bucket}
	if *verbose {
		flags["verbose"] = "true"
	}
	settings, err := config.Load(config.LoadOptions{Flags: flags, Logger: logging.New(*verbose)})
	if err != nil {
		return err
	}
	if err := settings.ValidateMedia(); err != nil {
		return err
	}
	log := logging.New(settings.Verbose)
	metrics.BuildInfo.WithLabelValues(version, commit).Set(1)

	var verifier server.Verifier
	if settings.EncoderURL != "" {
		encoder := faceauth.NewRemoteEncoder(settings.EncoderURL, log)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := encoder.Ping(pingCtx); err != nil {
			log.Warn("face encoder not reachable yet", "url", settings.EncoderURL, "error", err)
		}
		cancel()
		verifier = faceauth.NewAuthenticator(
			encoder,
			faceauth.WithTolerance(settings.FaceTolerance),
			faceauth.WithLogger(log),
		)
	} else {
		log.Warn("encoder_url not set, face verification disabled")
	}

	store, err := objstore.NewS3(ctx, objstore.S3Config{
		Region:       settings.AWSRegion,
		Endpoint:     *endpoint,
		UsePathStyle: *endpoint != "",
	})
	if err != nil {
		return err
	}
	processor, err := newProcessor(store, settings, *prefix, log)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:        settings.Addr(),
		JWT:         auth.JWTConfig{Secret: []byte(settings.JWTSecret)},
		CORSOrigins: settings.CORSOrigins,
		Logger:      log,
	}, verifier, processor)
	return srv.Run(ctx)
}

func newProcessor(store objstore.Store, s *config.Settings, prefix bool, log *slog.Logger) (thumbnail.Processor, error) {
	if prefix {
		return thumbnail.NewPrefixer(store, s.ThumbnailPercent, log), nil
	}
	return thumbnail.NewMirror(store, s.ProcessedBucket, s.ThumbnailPercent, log)
}

func issueToken(args []string) error {
	fs := flag.NewFlagSet("mediad token", flag.ContinueOnError)
	scopes := fs.StringSlice("scope", nil, "scope to grant (repeatable; default all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: mediad token [--scope s] <subject>")
	}

	settings, err := config.Load(config.LoadOptions{Logger: logging.New(false)})
	if err != nil {
		return err
	}
	if settings.JWTSecret == "" {
		return errors.New("jwt_secret is not configured")
	}

	token, err := auth.IssueToken(auth.JWTConfig{Secret: []byte(settings.JWTSecret)}, fs.Arg(0), *scopes...)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
