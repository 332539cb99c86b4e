package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// GeminiKeyEnv is the single key recognized in both the environment and the
// secrets file.
const GeminiKeyEnv = "GEMINI_API_KEY"

// ConfigError reports a configuration problem that blocks a model call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// ErrMissingAPIKey is returned when no source supplies an API key.
var ErrMissingAPIKey = &ConfigError{Reason: "missing API key"}

// Resolver looks up the Gemini API key. Precedence, highest first:
// explicit UI-supplied override, secrets file, environment variable.
// Every call re-reads the sources; nothing is cached.
type Resolver struct {
	secretsFile string
}

func NewResolver(secretsFile string) *Resolver {
	return &Resolver{secretsFile: secretsFile}
}

// ResolveKey returns the API key to use for a request, or ErrMissingAPIKey.
// override carries the session's UI-supplied key and wins when non-empty.
func (r *Resolver) ResolveKey(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if r.secretsFile != "" {
		if secrets, err := godotenv.Read(r.secretsFile); err == nil {
			if key := secrets[GeminiKeyEnv]; key != "" {
				return key, nil
			}
		}
	}

	if key := os.Getenv(GeminiKeyEnv); key != "" {
		return key, nil
	}

	return "", ErrMissingAPIKey
}
