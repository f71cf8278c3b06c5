package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sferrors "github.com/randalmurphal/storyflow/errors"
)

// File and variable names used by storyflow.
const (
	EnvPrefix  = "STORYFLOW_"
	AppDir     = "storyflow"
	LocalFile  = ".storyflow.yaml"
	DotEnvFile = ".env"
)

// Model backends.
const (
	BackendClaudeCLI = "claude-cli"
	BackendAnthropic = "anthropic"
)

// Defaults lists every known key with its default value.
var Defaults = map[string]string{
	// story workflow
	"backend":           BackendClaudeCLI,
	"model":             "",
	"anthropic_api_key": "",
	"max_tokens":        "4096",
	"prompt_dir":        "",
	"transcript_dir":    filepath.Join(".storyflow", "transcripts"),
	"webhook_url":       "",

	// media service
	"port":              "8080",
	"processed_bucket":  "",
	"thumbnail_percent": "50",
	"aws_region":        "",
	"jwt_secret":        "",
	"cors_origins":      "*",
	"encoder_url":       "",
	"face_tolerance":    "0.6",

	// output
	"verbose":  "false",
	"no_color": "false",
}

// legacyAliases are the unprefixed variables older deployments set.
var legacyAliases = map[string][]string{
	"anthropic_api_key": {"ANTHROPIC_API_KEY"},
	"processed_bucket":  {"PROCESSED_BUCKET_NAME"},
	"port":              {"PORT"},
	"aws_region":        {"AWS_REGION"},
}

// Settings is the typed, resolved configuration.
type Settings struct {
	Backend         string
	Model           string
	AnthropicAPIKey string
	MaxTokens       int
	PromptDir       string
	TranscriptDir   string
	WebhookURL      string

	Port             int
	ProcessedBucket  string
	ThumbnailPercent int
	AWSRegion        string
	JWTSecret        string
	CORSOrigins      []string
	EncoderURL       string
	FaceTolerance    float64

	Verbose bool
	NoColor bool

	// Resolved keeps every raw value and its source.
	Resolved *Resolved
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// Dir is where the search for .storyflow.yaml and .env starts.
	// Defaults to the working directory.
	Dir string

	// GlobalPath overrides ~/.config/storyflow/config.yaml.
	GlobalPath string

	// Flags are command-line overrides; empty values are ignored.
	Flags map[string]string

	Logger *slog.Logger
}

// GlobalPath returns the default global config file path.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppDir, "config.yaml")
}

// LocalPath returns the project config file for dir: .storyflow.yaml in
// the nearest directory holding one, or in the git root.
func LocalPath(dir string) string {
	root := findProjectRoot(dir, LocalFile)
	if root == "" {
		root = dir
	}
	return filepath.Join(root, LocalFile)
}

// Load resolves and parses the settings. It does not validate them.
func Load(opts LoadOptions) (*Settings, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	globalPath := opts.GlobalPath
	if globalPath == "" {
		globalPath = GlobalPath()
	}

	resolver := NewResolver(ResolverConfig{
		EnvPrefix:  EnvPrefix,
		GlobalPath: globalPath,
		LocalPath:  LocalPath(dir),
		DotEnvPath: filepath.Join(dir, DotEnvFile),
		Defaults:   Defaults,
		Aliases:    legacyAliases,
		Logger:     opts.Logger,
	})
	return Parse(resolver.ResolveWithFlags(opts.Flags))
}

// Parse converts resolved values into Settings.
func Parse(r *Resolved) (*Settings, error) {
	p := parser{r: r}
	s := &Settings{
		Backend:          strings.ToLower(r.Get("backend")),
		Model:            r.Get("model"),
		AnthropicAPIKey:  r.Get("anthropic_api_key"),
		MaxTokens:        p.int("max_tokens"),
		PromptDir:        r.Get("prompt_dir"),
		TranscriptDir:    r.Get("transcript_dir"),
		WebhookURL:       r.Get("webhook_url"),
		Port:             p.int("port"),
		ProcessedBucket:  r.Get("processed_bucket"),
		ThumbnailPercent: p.int("thumbnail_percent"),
		AWSRegion:        r.Get("aws_region"),
		JWTSecret:        r.Get("jwt_secret"),
		CORSOrigins:      splitList(r.Get("cors_origins")),
		EncoderURL:       r.Get("encoder_url"),
		FaceTolerance:    p.float("face_tolerance"),
		Verbose:          p.bool("verbose"),
		NoColor:          p.bool("no_color"),
		Resolved:         r,
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings the story workflow needs.
func (s *Settings) Validate() error {
	var errs []error

	switch s.Backend {
	case BackendClaudeCLI:
	case BackendAnthropic:
		if s.AnthropicAPIKey == "" {
			errs = append(errs, sferrors.NewMissingConfigError("anthropic_api_key"))
		}
	default:
		errs = append(errs, invalid("backend", s.Backend, "want claude-cli or anthropic"))
	}
	if s.MaxTokens <= 0 {
		errs = append(errs, invalid("max_tokens", strconv.Itoa(s.MaxTokens), "must be positive"))
	}

	return errors.Join(errs...)
}

// ValidateMedia checks the settings the media service needs. The processed
// bucket is not checked here; the thumbnail mirror refuses to start
// without one.
func (s *Settings) ValidateMedia() error {
	var errs []error

	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, invalid("port", strconv.Itoa(s.Port), "must be 1-65535"))
	}
	if s.ThumbnailPercent <= 0 || s.ThumbnailPercent > 100 {
		errs = append(errs, invalid("thumbnail_percent", strconv.Itoa(s.ThumbnailPercent), "must be 1-100"))
	}
	if s.FaceTolerance <= 0 {
		errs = append(errs, invalid("face_tolerance", fmt.Sprint(s.FaceTolerance), "must be positive"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address for the media service.
func (s *Settings) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

func invalid(key, value, reason string) error {
	return fmt.Errorf("%w: %s=%q: %s", sferrors.ErrInvalidConfig, key, value, reason)
}

// parser collects conversion errors so Parse reports all of them.
type parser struct {
	r    *Resolved
	errs []error
}

func (p *parser) int(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(p.r.Get(key)))
	if err != nil {
		p.errs = append(p.errs, invalid(key, p.r.Get(key), "not an integer"))
	}
	return v
}

func (p *parser) float(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.r.Get(key)), 64)
	if err != nil {
		p.errs = append(p.errs, invalid(key, p.r.Get(key), "not a number"))
	}
	return v
}

func (p *parser) bool(key string) bool {
	raw := strings.TrimSpace(p.r.Get(key))
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, invalid(key, raw, "not a boolean"))
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
