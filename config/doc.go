// Package config resolves storyflow settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. Environment variables (STORYFLOW_ prefix, plus legacy names such as
//     PROCESSED_BUCKET_NAME and PORT)
//  3. A .env file in the working directory, read with godotenv
//  4. Local config: .storyflow.yaml in the project root
//  5. Global config: ~/.config/storyflow/config.yaml
//  6. Built-in defaults
//
// # Basic Usage
//
//	settings, err := config.Load(config.LoadOptions{
//	    Flags: map[string]string{"backend": backendFlag},
//	})
//	if err != nil {
//	    return err
//	}
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//
//	value := settings.Resolved.Get("processed_bucket")
//	source := settings.Resolved.Source("processed_bucket") // "env"
//
// # Writing Config
//
// Set and Unset edit a YAML config file in place and reject unknown keys:
//
//	config.Set(config.GlobalPath(), "backend", "anthropic")
package config
