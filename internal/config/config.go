package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		DBFile  string `yaml:"db_file"`
	} `yaml:"app"`

	Crawl struct {
		Schedule               string  `yaml:"schedule"` // cron spec, e.g. "@every 6h"
		EmployerConcurrency    int     `yaml:"employer_concurrency"`
		PageConcurrency        int     `yaml:"page_concurrency"`
		EmployerTimeoutSeconds int     `yaml:"employer_timeout_seconds"`
		HTTPTimeoutSeconds     int     `yaml:"http_timeout_seconds"`
		RetryAttempts          int     `yaml:"retry_attempts"`
		RetryBackoffMillis     int     `yaml:"retry_backoff_ms"`
		HostRatePerSec         float64 `yaml:"host_rate_per_sec"`
		HostBurst              int     `yaml:"host_burst"`
	} `yaml:"crawl"`

	EmployersFile string `yaml:"employers_file"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Crawl.HTTPTimeoutSeconds) * time.Second
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.Crawl.RetryBackoffMillis) * time.Millisecond
}

func (c Config) EmployerTimeout() time.Duration {
	return time.Duration(c.Crawl.EmployerTimeoutSeconds) * time.Second
}
