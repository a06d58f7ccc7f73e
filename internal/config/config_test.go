// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultURL, cfg.Installer.URL)
	assert.Equal(t, "t2archinstall.py", cfg.Installer.Output)
	assert.Equal(t, "archlinux-keyring", cfg.Pacman.KeyringPackage)
	assert.Equal(t, []string{"python-textual"}, cfg.Pacman.ToolkitPackages)
	assert.Equal(t, []string{"textual"}, cfg.Venv.Packages)
	assert.True(t, cfg.Pacman.NoConfirm)
	assert.True(t, strings.HasSuffix(cfg.Venv.Dir, "t2venv"))
}

// =============================================================================
// FILE LOADING
// =============================================================================

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[installer]
url = "https://mirror.example.com/t2archinstall.py"
sha256 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

[venv]
dir = "/root/t2venv"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.com/t2archinstall.py", cfg.Installer.URL)
	assert.Equal(t, "/root/t2venv", cfg.Venv.Dir)
	// Untouched sections keep defaults.
	assert.Equal(t, "t2archinstall.py", cfg.Installer.Output)
	assert.Equal(t, "pacman", cfg.Pacman.Bin)
}

func TestLoad_MissingExplicitFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_UnknownKeysRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[installer]\nurll = \"typo\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config keys")
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[installer\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("T2BOOTSTRAP_URL", "https://mirror.example.com/script.py")
	t.Setenv("T2BOOTSTRAP_VENV", "/tmp/venv")
	t.Setenv("T2BOOTSTRAP_PACMAN", "/usr/local/bin/pacman")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://mirror.example.com/script.py", cfg.Installer.URL)
	assert.Equal(t, "/tmp/venv", cfg.Venv.Dir)
	assert.Equal(t, "/usr/local/bin/pacman", cfg.Pacman.Bin)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[installer]\nurl = \"https://file.example.com/a.py\"\n"), 0644))
	t.Setenv("T2BOOTSTRAP_URL", "https://env.example.com/b.py")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/b.py", cfg.Installer.URL)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"http url", func(c *Config) { c.Installer.URL = "http://example.com/a.py" }},
		{"garbage url", func(c *Config) { c.Installer.URL = "://bad" }},
		{"empty output", func(c *Config) { c.Installer.Output = "" }},
		{"negative timeout", func(c *Config) { c.Installer.DownloadTimeoutSecs = -1 }},
		{"short sha256", func(c *Config) { c.Installer.SHA256 = "abc123" }},
		{"non-hex sha256", func(c *Config) { c.Installer.SHA256 = strings.Repeat("z", 64) }},
		{"empty pacman", func(c *Config) { c.Pacman.Bin = "" }},
		{"empty keyring package", func(c *Config) { c.Pacman.KeyringPackage = "" }},
		{"no toolkit packages", func(c *Config) { c.Pacman.ToolkitPackages = nil }},
		{"empty venv dir", func(c *Config) { c.Venv.Dir = "" }},
		{"empty python", func(c *Config) { c.Venv.Python = "" }},
		{"no venv packages", func(c *Config) { c.Venv.Packages = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_AcceptsChecksumPin(t *testing.T) {
	cfg := Default()
	cfg.Installer.SHA256 = strings.Repeat("ab", 32)
	assert.NoError(t, cfg.Validate())
}

func TestDownloadTimeoutSecsOrDefault(t *testing.T) {
	cfg := Default()
	cfg.Installer.DownloadTimeoutSecs = 0
	assert.Equal(t, DefaultDownloadTimeoutSecs, cfg.DownloadTimeoutSecsOrDefault())

	cfg.Installer.DownloadTimeoutSecs = 30
	assert.Equal(t, 30, cfg.DownloadTimeoutSecsOrDefault())
}
