// Package validation checks untrusted input at the service boundary: lesson
// requests, download filenames and uploaded deck content.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Security limits to prevent DoS attacks (CWE-400).
const (
	// MaxDeckSize is the largest deck accepted for inspection (64 MB).
	MaxDeckSize = 64 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal   = errors.New("path traversal detected")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrPathTooLong     = errors.New("path too long")
	ErrFilenameTooLong = errors.New("filename too long")
	ErrEmptyPath       = errors.New("path cannot be empty")
	ErrNotDeck         = errors.New("not a presentation archive")
	ErrInvalidDeckID   = errors.New("invalid deck ID")
)

// Names and identifiers assigned by the deck registry.
var (
	deckName = regexp.MustCompile(`^lesson_[0-9a-f]{32}\.pptx$`)
	deckID   = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// SanitizePath validates a user-supplied path to prevent path traversal.
// It ensures the path does not escape the provided base directory and
// returns the cleaned path relative to it.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)

	if strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	fullPath := filepath.Join(baseDir, cleanPath)
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidateFilename checks that a filename is a single safe path element.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}

	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}

	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}

	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}

	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}

	return nil
}

// ValidateDeckFilename accepts only names of the form lesson_{32 hex}.pptx.
func ValidateDeckFilename(filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}
	if !deckName.MatchString(filename) {
		return fmt.Errorf("%w: not a generated deck name", ErrInvalidFilename)
	}
	return nil
}

// ValidateDeckID accepts the 32 lowercase hex digits the registry assigns.
func ValidateDeckID(id string) error {
	if !deckID.MatchString(id) {
		return ErrInvalidDeckID
	}
	return nil
}

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ValidateDeck reads a deck fully, enforcing MaxDeckSize and checking the
// ZIP signature every .pptx starts with.
func ValidateDeck(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDeckSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	if len(data) > MaxDeckSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrNotDeck, MaxDeckSize)
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, ErrNotDeck
	}
	return data, nil
}
