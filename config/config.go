// Package config holds the tunables of the memory editor.
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"memedit/search"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultChunkSize is the scan window size. Reading whole regions at once
	// fails on targets with multi hundred MB mappings.
	DefaultChunkSize = 2 << 20

	DefaultIOWorkers = 4

	MinChunkSize = 4 << 10
	MaxChunkSize = 64 << 20
)

// Config defines all options available to be set through the config file.
type Config struct {
	// ChunkSize is the number of bytes a scan reads per window, not counting
	// the pattern overlap.
	ChunkSize int `yaml:"chunk-size"`
	// IOWorkers bounds concurrent blocking syscalls.
	IOWorkers int `yaml:"io-workers"`
	// ComputeWorkers bounds concurrent pattern searches.
	ComputeWorkers int `yaml:"compute-workers"`
	// Algorithm is one of brute, bm or bm-gs.
	Algorithm string `yaml:"algorithm"`
}

// Default returns the built in configuration
func Default() Config {
	return Config{
		ChunkSize:      DefaultChunkSize,
		IOWorkers:      DefaultIOWorkers,
		ComputeWorkers: runtime.NumCPU(),
		Algorithm:      search.NameBoyerMooreGoodSuffix,
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to open config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read decodes YAML from r on top of Default and validates the result
func Read(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config data: %w", err)
	}

	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("unable to decode config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write marshals c as YAML
func (c Config) Write(w io.Writer) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (c Config) Validate() error {
	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("chunk-size %d out of range [%d, %d]", c.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if c.IOWorkers < 1 {
		return fmt.Errorf("io-workers must be at least 1, got %d", c.IOWorkers)
	}
	if c.ComputeWorkers < 1 {
		return fmt.Errorf("compute-workers must be at least 1, got %d", c.ComputeWorkers)
	}
	if _, err := search.ByName(c.Algorithm); err != nil {
		return err
	}
	return nil
}

// Searcher resolves the configured algorithm
func (c Config) Searcher() search.Searcher {
	s, err := search.ByName(c.Algorithm)
	if err != nil {
		return search.Default()
	}
	return s
}
