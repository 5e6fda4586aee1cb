package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	maxPathPrefixLength = 1024
	tarballExtension    = ".tar"
)

// BuildDescriptors are file names that identify a buildable agent project.
var BuildDescriptors = []string{
	"Dockerfile",
	"pyproject.toml",
	"requirements.txt",
	"package.json",
	"go.mod",
}

// PathPrefix validates an optional S3 key prefix. An empty prefix is valid.
func PathPrefix(prefix, field string) Result {
	if prefix == "" {
		return Result{}
	}
	r := MaxLength(prefix, maxPathPrefixLength, field)
	if !strings.HasSuffix(prefix, "/") {
		r = r.WithWarning(
			fmt.Sprintf("%s %q does not end with '/'", field, prefix),
			fmt.Sprintf("Please add a trailing '/' to %s so it only matches keys inside that folder", field),
		)
	}
	return r
}

// ProjectRoot validates the directory an agent image is built from.
// It is purely syntactic; the directory is read when the image asset is declared.
func ProjectRoot(path, field string) Result {
	if r := Required(path, field); !r.IsValid() {
		return r
	}
	r := traversalWarning(path, field)
	if !hasTrailingSeparator(path) && !IsBuildDescriptor(path) {
		r = r.WithWarning(
			fmt.Sprintf("%s %q does not reference a directory or a recognized build file", field, path),
			fmt.Sprintf("Please end %s with '/' or point it at one of: %s", field, strings.Join(BuildDescriptors, ", ")),
		)
	}
	return r
}

// TarballPath validates a prebuilt image archive. It is the one check that reads
// the filesystem: a missing archive is reported as a validation error.
func TarballPath(fs afero.Fs, path, field string) Result {
	if r := Required(path, field); !r.IsValid() {
		return r
	}
	r := traversalWarning(path, field)
	if !strings.EqualFold(filepath.Ext(path), tarballExtension) {
		r = r.WithWarning(
			fmt.Sprintf("%s %q does not have a %s extension", field, path, tarballExtension),
			fmt.Sprintf("Please set %s to an archive created with 'docker save -o image%s'", field, tarballExtension),
		)
	}

	exists, err := afero.Exists(fs, path)
	switch {
	case err != nil:
		r = r.WithError(
			fmt.Sprintf("%s %q could not be checked: %v", field, path, err),
			fmt.Sprintf("Please make sure %s is readable", field),
		)
	case !exists:
		r = r.WithError(
			fmt.Sprintf("%s %q does not exist", field, path),
			fmt.Sprintf("Please set %s to an existing image archive", field),
		)
	default:
		if isDir, _ := afero.IsDir(fs, path); isDir {
			r = r.WithError(
				fmt.Sprintf("%s %q is a directory, not an image archive", field, path),
				fmt.Sprintf("Please set %s to the archive file itself", field),
			)
		}
	}
	return r
}

// IsBuildDescriptor reports whether the last element of path is a known build file.
func IsBuildDescriptor(path string) bool {
	base := filepath.Base(filepath.FromSlash(path))
	for _, d := range BuildDescriptors {
		if base == d {
			return true
		}
	}
	return false
}

func traversalWarning(path, field string) Result {
	if !containsTraversal(path) {
		return Result{}
	}
	return Result{}.WithWarning(
		fmt.Sprintf("%s %q contains a parent directory reference (..)", field, path),
		fmt.Sprintf("Please use a path for %s that stays inside the project", field),
	)
}

func containsTraversal(path string) bool {
	for _, seg := range strings.FieldsFunc(path, isSeparator) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func hasTrailingSeparator(path string) bool {
	return path != "" && isSeparator(rune(path[len(path)-1]))
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
