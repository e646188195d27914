package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAdminEmail is the administrator identity used when none is
// configured. Admin checks compare emails exactly and case-sensitively.
const DefaultAdminEmail = "admin@ramadan.com"

// DefaultDataFile is where the flat-file backend keeps the document.
const DefaultDataFile = "data.json"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Admin struct {
		Email string `yaml:"email"`
	} `yaml:"admin"`
	Storage struct {
		File  string `yaml:"file"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Postgres struct {
			URL string `yaml:"url"`
		} `yaml:"postgres"`
	} `yaml:"storage"`
}

// Default returns the zero-configuration setup: flat-file storage next to
// the binary and the built-in admin identity.
func Default() Config {
	cfg := Config{}
	cfg.Admin.Email = DefaultAdminEmail
	cfg.Storage.File = DefaultDataFile
	return cfg
}

// Load reads YAML config from path. A missing file is not an error; the
// service runs fine with defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Admin.Email == "" {
		cfg.Admin.Email = DefaultAdminEmail
	}
	if cfg.Storage.File == "" {
		cfg.Storage.File = DefaultDataFile
	}
	return cfg, nil
}
