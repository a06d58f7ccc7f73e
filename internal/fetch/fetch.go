// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slsrepo/t2bootstrap/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// HTTPError reports a non-success status from the download host. The status
// line is preserved so the operator sees what the server actually said.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// ChecksumError reports a mismatch against a configured SHA-256 pin. The
// destination file is not touched when this happens.
type ChecksumError struct {
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected sha256 %s, got %s", e.Expected, e.Actual)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options tune a script download. The zero value is usable.
type Options struct {
	// Timeout bounds the entire request including the body copy.
	// 0 disables the client timeout (the context still applies).
	Timeout time.Duration

	// SHA256 is an optional hex-encoded pin. When set, the download is
	// verified before it becomes visible at the destination path.
	SHA256 string

	// Progress, when non-nil, is called as the body streams in. total is -1
	// when the server sent no Content-Length.
	Progress func(written, total int64)
}

// =============================================================================
// DOWNLOAD
// =============================================================================

// Script downloads url to dest. The file lands with mode 0644; making it
// executable is a separate, later step in the bootstrap sequence, so the
// executable bit is only ever applied to a complete file.
func Script(ctx context.Context, url, dest string, opts Options) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch installer script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body io.Reader = resp.Body
	if opts.Progress != nil {
		body = &progressReader{r: body, total: resp.ContentLength, fn: opts.Progress}
	}
	if opts.SHA256 != "" {
		body = &verifyingReader{
			r:        body,
			h:        sha256.New(),
			expected: strings.ToLower(opts.SHA256),
		}
	}

	// The verifying reader turns a pin mismatch into a read error at EOF, so
	// the atomic writer discards the temp file before anything is renamed
	// into place.
	if err := util.AtomicWriteReader(dest, body, 0644); err != nil {
		return fmt.Errorf("failed to save installer script: %w", err)
	}
	return nil
}

// Probe checks that the download host answers at all. Any HTTP response
// counts; this is a reachability check, not a correctness check.
func Probe(ctx context.Context, url string, timeout time.Duration) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// READERS
// =============================================================================

// progressReader reports cumulative bytes read to a callback.
type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	fn      func(written, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.written, p.total)
	}
	return n, err
}

// verifyingReader hashes everything it passes through and converts EOF into a
// ChecksumError when the digest does not match the pin.
type verifyingReader struct {
	r        io.Reader
	h        hash.Hash
	expected string
}

func (v *verifyingReader) Read(buf []byte) (int, error) {
	n, err := v.r.Read(buf)
	if n > 0 {
		v.h.Write(buf[:n])
	}
	if err == io.EOF {
		actual := hex.EncodeToString(v.h.Sum(nil))
		if actual != v.expected {
			return n, &ChecksumError{Expected: v.expected, Actual: actual}
		}
	}
	return n, err
}
