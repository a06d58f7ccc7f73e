// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package runlog records what a bootstrap run did.
//
// One JSON file per run, written best-effort at the end: the record is for
// t2linux support threads ("attach ~/.t2bootstrap/runs/<id>.json"), so a
// runlog write failure must never fail an otherwise good bootstrap.
package runlog
