package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobradar-engine/internal/domain"
)

type employersFile struct {
	Employers []struct {
		Name     string `yaml:"name"`
		Platform string `yaml:"platform"`
		BoardURL string `yaml:"board_url"`
	} `yaml:"employers"`
}

// LoadEmployers reads the employer seed file. A missing file is not an
// error; the registry may already be populated.
func LoadEmployers(path string) ([]domain.Employer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ef employersFile
	if err := yaml.Unmarshal(b, &ef); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([]domain.Employer, 0, len(ef.Employers))
	for i, e := range ef.Employers {
		p, err := domain.ParsePlatform(e.Platform)
		if err != nil {
			return nil, fmt.Errorf("%s: employers[%d]: %w", path, i, err)
		}
		out = append(out, domain.Employer{
			Name:     e.Name,
			Platform: p,
			BoardURL: e.BoardURL,
		})
	}
	return out, nil
}
