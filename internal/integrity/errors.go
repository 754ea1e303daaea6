// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package integrity

import "errors"

// Common integrity verification errors
var (
	// ErrNoChecksums indicates the checksums.sha256 file is missing
	ErrNoChecksums = errors.New("checksums.sha256 file not found")

	// ErrInvalidChecksumsFormat indicates the checksums file is malformed
	ErrInvalidChecksumsFormat = errors.New("invalid checksums file format")

	// ErrChecksumMismatch indicates an archive's hash doesn't match the expected value
	ErrChecksumMismatch = errors.New("checksum verification failed")
)
