// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/slsrepo/t2bootstrap/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Installer.Output = filepath.Join(dir, "t2archinstall.py")
	cfg.Venv.Dir = filepath.Join(dir, "t2venv")
	return cfg
}

// =============================================================================
// ARGUMENT CONSTRUCTION
// =============================================================================

func TestPacmanArgs(t *testing.T) {
	cfg := config.Default()

	got := pacmanArgs(cfg, "archlinux-keyring")
	want := []string{"-Sy", "--noconfirm", "archlinux-keyring"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pacmanArgs = %v, want %v", got, want)
	}

	cfg.Pacman.NoConfirm = false
	got = pacmanArgs(cfg, "python-textual")
	want = []string{"-Sy", "python-textual"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pacmanArgs without noconfirm = %v, want %v", got, want)
	}
}

func TestVenvArgs(t *testing.T) {
	cfg := config.Default()
	cfg.Venv.Dir = "/root/t2venv"

	if got, want := venvCreateArgs(cfg), []string{"-m", "venv", "/root/t2venv"}; !reflect.DeepEqual(got, want) {
		t.Errorf("venvCreateArgs = %v, want %v", got, want)
	}
	if got, want := pipInstallArgs(cfg), []string{"install", "textual"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pipInstallArgs = %v, want %v", got, want)
	}
	if got, want := VenvPip(cfg), "/root/t2venv/bin/pip"; got != want {
		t.Errorf("VenvPip = %q, want %q", got, want)
	}
	if got, want := VenvPython(cfg), "/root/t2venv/bin/python"; got != want {
		t.Errorf("VenvPython = %q, want %q", got, want)
	}
}

func TestSequence_OrderMatchesManualBootstrap(t *testing.T) {
	steps := Sequence(config.Default())
	want := []string{"keyring", "toolkit", "fetch", "chmod", "venv"}
	if len(steps) != len(want) {
		t.Fatalf("Sequence has %d steps, want %d", len(steps), len(want))
	}
	for i, name := range want {
		if steps[i].Name != name {
			t.Errorf("Step %d: got %q, want %q", i, steps[i].Name, name)
		}
	}
}

// =============================================================================
// CHMOD STEP
// =============================================================================

func TestMarkExecutable(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Installer.Output, []byte("#!/usr/bin/env python3\n"), 0644); err != nil {
		t.Fatalf("Seed write failed: %v", err)
	}

	step := MarkExecutable(cfg)
	if err := step.Run(context.Background(), &Sink{}); err != nil {
		t.Fatalf("MarkExecutable failed: %v", err)
	}

	info, err := os.Stat(cfg.Installer.Output)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("Mode: got %o, want 0755", info.Mode().Perm())
	}
}

func TestMarkExecutable_MissingFile(t *testing.T) {
	cfg := testConfig(t)

	step := MarkExecutable(cfg)
	if err := step.Run(context.Background(), &Sink{}); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

// =============================================================================
// FETCH + CHMOD INTERACTION
// =============================================================================

// A failed download must stop the sequence before the permission step, and
// must not leave a file the permission step could act on.
func TestSequence_FetchFailureStopsBeforeChmod(t *testing.T) {
	cfg := testConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()
	cfg.Installer.URL = srv.URL

	chmodRan := false
	steps := []Step{
		ScriptFetch(cfg),
		{Name: "chmod", Title: "chmod", Run: func(context.Context, *Sink) error {
			chmodRan = true
			return nil
		}},
	}

	err := NewRunner(steps, &Sink{}, nil).Run(context.Background())
	if err == nil {
		t.Fatal("Expected fetch failure")
	}
	if chmodRan {
		t.Error("Permission step ran after failed download")
	}
	if _, statErr := os.Stat(cfg.Installer.Output); !os.IsNotExist(statErr) {
		t.Error("Failed download left a file at the destination")
	}
}

func TestScriptFetch_Success(t *testing.T) {
	cfg := testConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#!/usr/bin/env python3\n"))
	}))
	defer srv.Close()
	cfg.Installer.URL = srv.URL

	step := ScriptFetch(cfg)
	if err := step.Run(context.Background(), &Sink{}); err != nil {
		t.Fatalf("ScriptFetch failed: %v", err)
	}
	if _, err := os.Stat(cfg.Installer.Output); err != nil {
		t.Errorf("Downloaded file missing: %v", err)
	}
}

// =============================================================================
// VENV STEP
// =============================================================================

// fakePython is a stand-in interpreter: `fakepython -m venv DIR` creates
// DIR/bin/pip, which records its own arguments when invoked. This exercises
// the real two-command flow of the venv step without a Python toolchain.
const fakePython = `#!/bin/sh
# expects: -m venv <dir>
dir="$3"
mkdir -p "$dir/bin"
cat > "$dir/bin/pip" <<'PIP'
#!/bin/sh
echo "$@" > "$(dirname "$0")/pip-args"
PIP
chmod 755 "$dir/bin/pip"
`

func TestVenvSetup(t *testing.T) {
	cfg := testConfig(t)

	binDir := t.TempDir()
	pythonPath := filepath.Join(binDir, "fakepython")
	if err := os.WriteFile(pythonPath, []byte(fakePython), 0755); err != nil {
		t.Fatalf("Failed to write fake python: %v", err)
	}
	cfg.Venv.Python = pythonPath

	sink, _ := collectingSink()
	step := VenvSetup(cfg)
	if err := step.Run(context.Background(), sink); err != nil {
		t.Fatalf("VenvSetup failed: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(cfg.Venv.Dir, "bin", "pip-args"))
	if err != nil {
		t.Fatalf("pip was not invoked: %v", err)
	}
	if string(args) != "install textual\n" {
		t.Errorf("pip args: got %q, want %q", string(args), "install textual\n")
	}
}

func TestVenvSetup_CreateFailureSkipsPip(t *testing.T) {
	cfg := testConfig(t)
	cfg.Venv.Python = "definitely-not-a-real-python-xyz"

	step := VenvSetup(cfg)
	if err := step.Run(context.Background(), &Sink{OutputFn: func(string) {}}); err == nil {
		t.Fatal("Expected error when interpreter is missing")
	}
	// No environment means no pip; the directory must not exist.
	if _, statErr := os.Stat(cfg.Venv.Dir); !os.IsNotExist(statErr) {
		t.Error("Venv directory exists despite failed creation")
	}
}
