// Package config loads the optional rosgraph.hcl settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "ROSGRAPH_CONFIG"

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "rosgraph.hcl"

// Config holds the settings command-line flags fall back to.
//
//	project = "robot.db"
//	out_dir = "launch"
//
//	serve {
//	  listen = "127.0.0.1:2049"
//	}
//
//	library {
//	  feed = "packages.json"
//	}
type Config struct {
	Project string         `hcl:"project,optional"`
	OutDir  string         `hcl:"out_dir,optional"`
	Serve   *ServeConfig   `hcl:"serve,block"`
	Library *LibraryConfig `hcl:"library,block"`
}

type ServeConfig struct {
	Listen     string `hcl:"listen,optional"`
	Mountpoint string `hcl:"mountpoint,optional"`
}

type LibraryConfig struct {
	Feed string `hcl:"feed,optional"`
}

// Default returns the settings used when no file sets them.
func Default() *Config {
	return &Config{
		Project: "rosgraph.db",
		OutDir:  "launch",
		Serve:   &ServeConfig{Listen: "127.0.0.1:0"},
		Library: &LibraryConfig{},
	}
}

// Load reads the config file at path, or at $ROSGRAPH_CONFIG when path is
// empty, or DefaultFile when neither is set. Only an explicitly named file
// has to exist. Unset values keep their defaults.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		path, explicit = DefaultFile, false
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes src, named filename in diagnostics, over the defaults.
func Parse(filename string, src []byte) (*Config, error) {
	var c Config
	if err := hclsimple.Decode(filename, src, nil, &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.fill(Default())
	return &c, nil
}

func (c *Config) fill(def *Config) {
	if c.Project == "" {
		c.Project = def.Project
	}
	if c.OutDir == "" {
		c.OutDir = def.OutDir
	}
	if c.Serve == nil {
		c.Serve = def.Serve
	} else if c.Serve.Listen == "" {
		c.Serve.Listen = def.Serve.Listen
	}
	if c.Library == nil {
		c.Library = def.Library
	}
}
