package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apimocker/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apimocker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "file: data.json\nport: 8080\nwatch: true\nlogFormat: json\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.File = "data.json"
	want.Port = 8080
	want.Watch = true
	want.LogFormat = "json"
	assert.Equal(t, want, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "fiel: typo.json\n"))
	assert.Error(t, err, "unknown keys are rejected")

	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.File = "db.json"

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing file", func(c *Config) { c.File = "" }, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:3000", DefaultConfig().Addr())
	assert.Equal(t, "[::1]:80", Config{Host: "::1", Port: 80}.Addr())
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "file: from-config.json\nport: 8080\nhost: 127.0.0.1\n")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--port", "9000"}))
	fv := flagValues{config: path, port: 9000}

	cfg, err := resolveConfig(cmd, fv)
	require.NoError(t, err)
	assert.Equal(t, "from-config.json", cfg.File)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
}

func TestResolveConfig_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	_, err := resolveConfig(cmd, flagValues{})
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"users":[{"id":1}],"tags":[]}`), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "--file", good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "2 collection(s)")
	assert.Contains(t, out.String(), "users")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users":`), 0o644))
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "-f", bad})
	err := cmd.Execute()
	var se *store.StartupError
	assert.True(t, errors.As(err, &se))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "apimocker dev\n", out.String())
}
