// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/slsrepo/t2bootstrap/internal/config"
	"github.com/slsrepo/t2bootstrap/internal/fetch"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Status classifies a check outcome.
type Status int

const (
	// Pass means the environment looks right.
	Pass Status = iota
	// Warn means the bootstrap can proceed but the operator should know.
	Warn
	// Fail means a required precondition is missing.
	Fail
)

// String returns the marker used in text output.
func (s Status) String() string {
	switch s {
	case Pass:
		return "OK"
	case Warn:
		return "!!"
	case Fail:
		return "FAIL"
	default:
		return "??"
	}
}

// Result is the outcome of one environment check.
type Result struct {
	Name    string
	Status  Status
	Message string
	// Fix suggests a remedy when Status is Warn or Fail.
	Fix string
}

// Check is a single environment probe.
type Check struct {
	Name string
	// Required marks checks whose failure aborts the bootstrap.
	Required bool
	Run      func(ctx context.Context) Result
}

// =============================================================================
// WELL-KNOWN PATHS
// =============================================================================

// Overridable in tests.
var (
	archReleasePath = "/etc/arch-release"
	efiFirmwarePath = "/sys/firmware/efi"
	dmiProductPath  = "/sys/class/dmi/id/product_name"
)

// probeTimeout bounds the network reachability check; it is advisory and
// must not stall the welcome screen.
const probeTimeout = 5 * time.Second

// minFreeBytes is the advisory free-space floor for the working directory.
// The script and the venv together are well under this; the margin covers
// pacman's cache.
const minFreeBytes = 1 << 30 // 1 GiB

// =============================================================================
// CHECKS
// =============================================================================

// Checks builds the preflight checks for the given configuration, in display
// order. euid is os.Geteuid at the call site; injected for testability.
func Checks(cfg *config.Config, euid int) []Check {
	return []Check{
		{
			Name:     "Root privileges",
			Required: true,
			Run: func(context.Context) Result {
				if euid != 0 {
					return Result{
						Name:    "Root privileges",
						Status:  Fail,
						Message: fmt.Sprintf("running as uid %d", euid),
						Fix:     "pacman needs root; re-run from the live ISO's root shell",
					}
				}
				return Result{Name: "Root privileges", Status: Pass, Message: "running as root"}
			},
		},
		binaryCheck("Package manager", cfg.Pacman.Bin, true),
		binaryCheck("Python interpreter", cfg.Venv.Python, true),
		{
			Name: "Arch live environment",
			Run: func(context.Context) Result {
				if _, err := os.Stat(archReleasePath); err != nil {
					return Result{
						Name:    "Arch live environment",
						Status:  Warn,
						Message: "this does not look like an Arch Linux system",
						Fix:     "boot the Arch ISO from wiki.t2linux.org before installing",
					}
				}
				return Result{Name: "Arch live environment", Status: Pass, Message: "Arch Linux detected"}
			},
		},
		{
			Name: "EFI boot mode",
			Run: func(context.Context) Result {
				if _, err := os.Stat(efiFirmwarePath); err != nil {
					return Result{
						Name:    "EFI boot mode",
						Status:  Warn,
						Message: "not booted via EFI",
						Fix:     "T2 Macs boot EFI only; the installer will not be able to set up a bootloader",
					}
				}
				return Result{Name: "EFI boot mode", Status: Pass, Message: "EFI firmware present"}
			},
		},
		{
			Name: "Hardware model",
			Run:  func(context.Context) Result { return hardwareModel() },
		},
		{
			Name: "Network",
			Run: func(ctx context.Context) Result {
				if err := fetch.Probe(ctx, cfg.Installer.URL, probeTimeout); err != nil {
					return Result{
						Name:    "Network",
						Status:  Warn,
						Message: "download host unreachable",
						Fix:     "check the connection (iwctl for Wi-Fi); the download step will fail without one",
					}
				}
				return Result{Name: "Network", Status: Pass, Message: "download host reachable"}
			},
		},
		{
			Name: "Disk space",
			Run: func(context.Context) Result {
				return diskSpace(filepath.Dir(absOrDot(cfg.Installer.Output)))
			},
		},
	}
}

// binaryCheck verifies that a tool is invokable. Absolute paths are checked
// directly; bare names are resolved through PATH.
func binaryCheck(name, bin string, required bool) Check {
	return Check{
		Name:     name,
		Required: required,
		Run: func(context.Context) Result {
			var err error
			if filepath.IsAbs(bin) {
				_, err = os.Stat(bin)
			} else {
				_, err = exec.LookPath(bin)
			}
			if err != nil {
				status := Warn
				if required {
					status = Fail
				}
				return Result{
					Name:    name,
					Status:  status,
					Message: fmt.Sprintf("%s not found", bin),
					Fix:     "this is expected to exist on the Arch live ISO; check the environment",
				}
			}
			return Result{Name: name, Status: Pass, Message: bin + " found"}
		},
	}
}

// hardwareModel reports the DMI product name. Purely informational: the
// bootstrap runs anywhere, but a non-Mac model usually means the wrong
// machine is about to be installed.
func hardwareModel() Result {
	data, err := os.ReadFile(dmiProductPath)
	if err != nil {
		return Result{Name: "Hardware model", Status: Warn, Message: "model not readable"}
	}
	model := strings.TrimSpace(string(data))
	if !isAppleModel(model) {
		return Result{
			Name:    "Hardware model",
			Status:  Warn,
			Message: model,
			Fix:     "this installer targets Intel Macs with the T2 chip",
		}
	}
	return Result{Name: "Hardware model", Status: Pass, Message: model}
}

func isAppleModel(model string) bool {
	for _, prefix := range []string{"MacBook", "iMac", "Macmini", "MacPro"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// diskSpace warns when the filesystem holding the download destination is
// nearly full.
func diskSpace(dir string) Result {
	free, err := freeBytes(dir)
	if err != nil {
		return Result{Name: "Disk space", Status: Warn, Message: "free space not readable"}
	}
	if free < minFreeBytes {
		return Result{
			Name:    "Disk space",
			Status:  Warn,
			Message: fmt.Sprintf("%d MiB free in %s", free>>20, dir),
			Fix:     "the live environment may run out of space during package installs",
		}
	}
	return Result{Name: "Disk space", Status: Pass, Message: fmt.Sprintf("%d MiB free", free>>20)}
}

func absOrDot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "."
	}
	return abs
}

// =============================================================================
// EXECUTION
// =============================================================================

// RunAll executes the checks in order and returns their results.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		results = append(results, check.Run(ctx))
	}
	return results
}

// RequiredFailed reports whether any required check failed. checks and
// results must be parallel slices as produced by Checks and RunAll.
func RequiredFailed(checks []Check, results []Result) bool {
	for i, check := range checks {
		if check.Required && i < len(results) && results[i].Status == Fail {
			return true
		}
	}
	return false
}
