// Package filex holds small filesystem helpers for the CLI.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MaxImageSize caps the size of an image accepted for scanning.
const MaxImageSize = 10 << 20

var ErrEmptyFile = errors.New("file is empty")

// EnsureSubDir creates dirName under the current working directory if needed
// and returns its absolute path.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ReadImage loads an image file for OCR, rejecting directories, empty files
// and files larger than MaxImageSize.
func ReadImage(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if fi.Size() > MaxImageSize {
		return nil, fmt.Errorf("%s is too large (%d bytes)", path, fi.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
