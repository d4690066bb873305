package config

import (
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/dshills/packwizml/internal/apperr"
)

// Secrets holds credentials read from the environment.
type Secrets struct {
	CurseForgeAPIKey string `env:"CF_API_KEY"`
	// CurseForgeAPIKeyFile receives the content of the file named by
	// CF_API_KEY_FILE.
	CurseForgeAPIKeyFile string `env:"CF_API_KEY_FILE,file"`
}

// APIKey returns the CurseForge key, preferring CF_API_KEY over the file.
func (s Secrets) APIKey() string {
	if k := strings.TrimSpace(s.CurseForgeAPIKey); k != "" {
		return k
	}
	return strings.TrimSpace(s.CurseForgeAPIKeyFile)
}

// LoadSecrets reads credentials from the environment. A CF_API_KEY_FILE
// that cannot be read is a file error; an unset key is not an error here,
// only when a CurseForge request needs it.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, apperr.File("reading secrets", "CF_API_KEY_FILE", err)
	}
	return s, nil
}
