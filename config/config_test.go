package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"memedit/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 2*1024*1024, c.ChunkSize)
	assert.Equal(t, 4, c.IOWorkers)
	assert.Equal(t, runtime.NumCPU(), c.ComputeWorkers)
	assert.Equal(t, search.NameBoyerMooreGoodSuffix, c.Algorithm)
	require.NoError(t, c.Validate())
	assert.IsType(t, search.BoyerMooreGoodSuffix{}, c.Searcher())
}

func TestReadOverridesDefaults(t *testing.T) {
	c, err := Read(strings.NewReader("chunk-size: 65536\nalgorithm: brute\n"))
	require.NoError(t, err)
	assert.Equal(t, 65536, c.ChunkSize)
	assert.Equal(t, DefaultIOWorkers, c.IOWorkers)
	assert.IsType(t, search.BruteForce{}, c.Searcher())
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "chunk-sise: 65536\n"},
		{"small chunk", "chunk-size: 16\n"},
		{"huge chunk", "chunk-size: 134217728\n"},
		{"no io workers", "io-workers: 0\n"},
		{"no compute workers", "compute-workers: -1\n"},
		{"unknown algorithm", "algorithm: kmp\n"},
		{"not yaml", "chunk-size: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadAndWrite(t *testing.T) {
	c := Default()
	c.ChunkSize = 1 << 20
	c.Algorithm = search.NameBoyerMoore

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))

	path := filepath.Join(t.TempDir(), "memedit.yml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
