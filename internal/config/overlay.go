package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is an optional side file that swaps in different
// company lists without touching the main config.
type CompaniesFile struct {
	Sources struct {
		Greenhouse struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`
		RemoteOK struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"remoteok"`
	} `yaml:"sources"`
}

func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if err != nil {
		// a missing companies file should not kill startup
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}

	if len(cf.Sources.Greenhouse.Companies) > 0 {
		cfg.Sources.Greenhouse.Companies = cf.Sources.Greenhouse.Companies
	}
	if len(cf.Sources.Lever.Companies) > 0 {
		cfg.Sources.Lever.Companies = cf.Sources.Lever.Companies
	}
	if len(cf.Sources.RemoteOK.Companies) > 0 {
		cfg.Sources.RemoteOK.Companies = cf.Sources.RemoteOK.Companies
	}
	return nil
}
