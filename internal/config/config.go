// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete t2bootstrap configuration.
type Config struct {
	// Installer configures the script download.
	Installer InstallerConfig `toml:"installer"`

	// Pacman configures the package-manager steps.
	Pacman PacmanConfig `toml:"pacman"`

	// Venv configures the Python virtual environment step.
	Venv VenvConfig `toml:"venv"`
}

// InstallerConfig configures where the installer script comes from and where
// it lands.
type InstallerConfig struct {
	// URL is the HTTPS location of the installer script.
	URL string `toml:"url"`
	// Output is the local filename the script is written to. Relative paths
	// are resolved against the working directory, matching the manual
	// `curl -o t2archinstall.py ...` invocation.
	Output string `toml:"output"`
	// SHA256 optionally pins the expected checksum of the downloaded script
	// (hex). Empty disables verification; upstream publishes no checksum, the
	// hook exists for curated mirrors.
	SHA256 string `toml:"sha256"`
	// DownloadTimeoutSecs bounds the whole fetch. 0 means the default.
	DownloadTimeoutSecs int `toml:"download_timeout_secs"`
}

// PacmanConfig configures the keyring refresh and toolkit install steps.
type PacmanConfig struct {
	// Bin is the package manager binary.
	Bin string `toml:"bin"`
	// KeyringPackage is installed first so signatures on everything after it
	// verify on a stale live ISO.
	KeyringPackage string `toml:"keyring_package"`
	// ToolkitPackages are the terminal-UI toolkit packages the installer
	// needs system-wide.
	ToolkitPackages []string `toml:"toolkit_packages"`
	// NoConfirm passes --noconfirm so the sequence never blocks on a prompt.
	NoConfirm bool `toml:"no_confirm"`
}

// VenvConfig configures the isolated Python environment.
type VenvConfig struct {
	// Dir is the virtual environment directory. Defaults under the user's
	// home directory.
	Dir string `toml:"dir"`
	// Python is the interpreter used to create the environment.
	Python string `toml:"python"`
	// Packages are installed into the environment with pip.
	Packages []string `toml:"packages"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultURL is the canonical upstream location of the installer script.
const DefaultURL = "https://github.com/slsrepo/t2archinstall/raw/refs/heads/main/t2archinstall.py"

// DefaultDownloadTimeoutSecs bounds the script fetch; the script is a few
// hundred KB, so two minutes is generous even on bad hotel wifi.
const DefaultDownloadTimeoutSecs = 120

// Default returns a Config that works unmodified on an Arch live ISO.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Installer: InstallerConfig{
			URL:                 DefaultURL,
			Output:              "t2archinstall.py",
			DownloadTimeoutSecs: DefaultDownloadTimeoutSecs,
		},
		Pacman: PacmanConfig{
			Bin:             "pacman",
			KeyringPackage:  "archlinux-keyring",
			ToolkitPackages: []string{"python-textual"},
			NoConfirm:       true,
		},
		Venv: VenvConfig{
			Dir:      filepath.Join(home, "t2venv"),
			Python:   "python",
			Packages: []string{"textual"},
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// candidatePaths returns the config file locations checked in order when no
// explicit --config path is given.
func candidatePaths() []string {
	paths := []string{"/etc/t2bootstrap.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".t2bootstrap", "config.toml"))
	}
	return paths
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the effective configuration: defaults, then the config file (if
// one exists), then environment overrides, then validation.
//
// path may be empty, in which case the standard locations are probed. A
// missing file is not an error; a present but malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else {
		for _, candidate := range candidatePaths() {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if err := loadTOML(cfg, candidate); err != nil {
				return nil, fmt.Errorf("failed to load config %s: %w", candidate, err)
			}
			break
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTOML decodes path over cfg, so absent keys keep their defaults.
func loadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies T2BOOTSTRAP_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("T2BOOTSTRAP_URL"); v != "" {
		c.Installer.URL = v
	}
	if v := os.Getenv("T2BOOTSTRAP_OUTPUT"); v != "" {
		c.Installer.Output = v
	}
	if v := os.Getenv("T2BOOTSTRAP_SHA256"); v != "" {
		c.Installer.SHA256 = v
	}
	if v := os.Getenv("T2BOOTSTRAP_VENV"); v != "" {
		c.Venv.Dir = v
	}
	if v := os.Getenv("T2BOOTSTRAP_PYTHON"); v != "" {
		c.Venv.Python = v
	}
	if v := os.Getenv("T2BOOTSTRAP_PACMAN"); v != "" {
		c.Pacman.Bin = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate rejects configurations the bootstrap cannot safely run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Installer.URL)
	if err != nil {
		return fmt.Errorf("invalid installer URL %q: %w", c.Installer.URL, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("installer URL must use https, got %q", c.Installer.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("installer URL %q has no host", c.Installer.URL)
	}

	if c.Installer.Output == "" {
		return fmt.Errorf("installer output filename must not be empty")
	}
	if c.Installer.DownloadTimeoutSecs < 0 {
		return fmt.Errorf("download timeout must not be negative")
	}
	if s := c.Installer.SHA256; s != "" {
		if len(s) != 64 || !isHex(s) {
			return fmt.Errorf("installer sha256 must be 64 hex characters, got %q", s)
		}
	}

	if c.Pacman.Bin == "" {
		return fmt.Errorf("pacman binary must not be empty")
	}
	if c.Pacman.KeyringPackage == "" {
		return fmt.Errorf("keyring package must not be empty")
	}
	if len(c.Pacman.ToolkitPackages) == 0 {
		return fmt.Errorf("toolkit package list must not be empty")
	}

	if c.Venv.Dir == "" {
		return fmt.Errorf("venv directory must not be empty")
	}
	if c.Venv.Python == "" {
		return fmt.Errorf("python binary must not be empty")
	}
	if len(c.Venv.Packages) == 0 {
		return fmt.Errorf("venv package list must not be empty")
	}

	return nil
}

// DownloadTimeoutSecsOrDefault returns the configured timeout, falling back
// to the default for the zero value.
func (c *Config) DownloadTimeoutSecsOrDefault() int {
	if c.Installer.DownloadTimeoutSecs > 0 {
		return c.Installer.DownloadTimeoutSecs
	}
	return DefaultDownloadTimeoutSecs
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
