package context_aggregator

import (
	"errors"
	"fmt"

	"github.com/opsight-dev/opsight/context_aggregator/models"
)

var (
	// ErrPathNotFound means the target directory exists under none of the fallbacks.
	ErrPathNotFound = errors.New("directory not found")
	// ErrNotADirectory means the target resolved to something other than a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// PathNotFoundError carries the resolution attempt that failed.
type PathNotFoundError struct {
	Path models.ResolvedPath
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("directory %s does not exist (requested %q)", e.Path.ResolvedAbsolute, e.Path.Requested)
}

func (e *PathNotFoundError) Unwrap() error {
	return ErrPathNotFound
}

// NotADirectoryError is returned when the target exists but is a file.
type NotADirectoryError struct {
	Path models.ResolvedPath
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("%s is not a directory (requested %q)", e.Path.ResolvedAbsolute, e.Path.Requested)
}

func (e *NotADirectoryError) Unwrap() error {
	return ErrNotADirectory
}
