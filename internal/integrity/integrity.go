// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package integrity verifies bundled library archives against a sha256sum-style
// checksums.sha256 file shipped in the same resource directory.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Verifier checks archives in one resource directory. The checksums file is
// read once; a directory without one verifies nothing.
type Verifier struct {
	dir       string
	checksums *ChecksumFile
}

// NewVerifier loads the checksums of dir. A missing checksums file is not an
// error; a malformed one is.
func NewVerifier(dir string) (*Verifier, error) {
	cf, err := LoadChecksums(dir)
	if err != nil && !errors.Is(err, ErrNoChecksums) {
		return nil, err
	}
	return &Verifier{dir: dir, checksums: cf}, nil
}

// Verify hashes the named file when the checksums list it.
// Files not listed are accepted. Returns whether a check took place.
func (v *Verifier) Verify(name string) (checked bool, err error) {
	if v == nil || v.checksums == nil {
		return false, nil
	}
	entry := v.checksums.FindEntry(name)
	if entry == nil {
		return false, nil
	}

	actual, err := ComputeSHA256(filepath.Join(v.dir, name))
	if err != nil {
		return true, fmt.Errorf("failed to hash %s: %w", name, err)
	}
	if actual != entry.Hash {
		return true, fmt.Errorf("%w: %s (expected %s..., got %s...)",
			ErrChecksumMismatch, name, entry.Hash[:16], actual[:16])
	}
	return true, nil
}

// ComputeSHA256 computes the SHA256 checksum of a file as a lowercase hex string.
func ComputeSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
