// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/slsrepo/t2bootstrap/internal/util"
)

// runCommand executes an external command and waits for it.
//
// Passthrough mode hands the child the real stdout/stderr so interactive
// progress bars and prompts render natively. Streaming mode captures both
// pipes and delivers sanitized lines to the sink; stdout and stderr are read
// concurrently, so their interleaving is not deterministic.
func runCommand(ctx context.Context, sink *Sink, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	if sink != nil && sink.Passthrough {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return commandError(ctx, name, args, err)
		}
		return nil
	}

	sink.Line("$ " + name + " " + strings.Join(args, " "))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return commandError(ctx, name, args, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		streamLines(stdout, sink)
	}()
	go func() {
		defer wg.Done()
		streamLines(stderr, sink)
	}()

	// Drain both pipes before Wait closes them.
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return commandError(ctx, name, args, err)
	}
	return nil
}

// streamLines forwards each output line to the sink.
func streamLines(pipe io.Reader, sink *Sink) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 256*1024)
	for scanner.Scan() {
		line := util.SanitizeLine(scanner.Text())
		if line != "" {
			sink.Line(line)
		}
	}
}

// commandError wraps a child process failure, preferring the context error
// when the run was canceled or timed out.
func commandError(ctx context.Context, name string, args []string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ctxErr)
	}
	return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
}
