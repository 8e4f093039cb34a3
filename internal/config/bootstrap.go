package config

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultConfig = `app:
  data_dir: .
  db_file: jobradar.db

crawl:
  schedule: "@every 6h"
  employer_concurrency: 4
  page_concurrency: 20
  employer_timeout_seconds: 300
  http_timeout_seconds: 20
  retry_attempts: 3
  retry_backoff_ms: 500
  host_rate_per_sec: 4
  host_burst: 8

employers_file: employers.yml
`

// EnsureUserConfig writes a default config into dataDir if none exists and
// returns the path to use.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.WriteFile(userPath, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
