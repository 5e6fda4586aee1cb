package validation

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestPathPrefix(t *testing.T) {
	testCases := map[string]struct {
		prefix string

		wantedErrCount     int
		wantedWarningCount int
	}{
		"empty is valid":        {prefix: ""},
		"trailing slash":        {prefix: "documents/"},
		"no trailing slash":     {prefix: "documents", wantedWarningCount: 1},
		"too long":              {prefix: strings.Repeat("a", 1024) + "/", wantedErrCount: 1},
		"max length with slash": {prefix: strings.Repeat("a", 1023) + "/"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := PathPrefix(tc.prefix, "s3Prefix")

			require.Len(t, got.Errors, tc.wantedErrCount)
			require.Len(t, got.Warnings, tc.wantedWarningCount)
		})
	}
}

func TestProjectRoot(t *testing.T) {
	testCases := map[string]struct {
		path string

		wantedErrCount     int
		wantedWarningCount int
	}{
		"directory":           {path: "./agent/"},
		"windows directory":   {path: `agent\`},
		"dockerfile":          {path: "agent/Dockerfile"},
		"pyproject":           {path: "pyproject.toml"},
		"bare name":           {path: "agent", wantedWarningCount: 1},
		"traversal":           {path: "../agent/", wantedWarningCount: 1},
		"traversal bare name": {path: "../agent", wantedWarningCount: 2},
		"dots in a name":      {path: "my..agent/"},
		"empty":               {path: "", wantedErrCount: 1},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := ProjectRoot(tc.path, "projectRoot")

			require.Len(t, got.Errors, tc.wantedErrCount)
			require.Len(t, got.Warnings, tc.wantedWarningCount)
		})
	}
}

func TestTarballPath(t *testing.T) {
	testCases := map[string]struct {
		setupFs func(fs afero.Fs)
		path    string

		wantedErr          string
		wantedWarningCount int
	}{
		"existing archive": {
			setupFs: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "build/image.tar", []byte("layers"), 0o644)
			},
			path: "build/image.tar",
		},
		"missing archive": {
			path:      "build/image.tar",
			wantedErr: `tarballImageFile "build/image.tar" does not exist`,
		},
		"directory": {
			setupFs: func(fs afero.Fs) {
				_ = fs.MkdirAll("build/image.tar", 0o755)
			},
			path:      "build/image.tar",
			wantedErr: "is a directory",
		},
		"other extension warns": {
			setupFs: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "image.tgz", []byte("layers"), 0o644)
			},
			path:               "image.tgz",
			wantedWarningCount: 1,
		},
		"empty": {
			path:      "",
			wantedErr: "tarballImageFile is required",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.setupFs != nil {
				tc.setupFs(fs)
			}

			got := TarballPath(fs, tc.path, "tarballImageFile")

			require.Len(t, got.Warnings, tc.wantedWarningCount)
			if tc.wantedErr == "" {
				require.True(t, got.IsValid(), got.Errors)
				return
			}
			require.Len(t, got.Errors, 1)
			require.Contains(t, got.Errors[0], tc.wantedErr)
		})
	}
}

func TestIsBuildDescriptor(t *testing.T) {
	require.True(t, IsBuildDescriptor("Dockerfile"))
	require.True(t, IsBuildDescriptor("svc/requirements.txt"))
	require.True(t, IsBuildDescriptor("svc/go.mod"))
	require.False(t, IsBuildDescriptor("svc/main.py"))
	require.False(t, IsBuildDescriptor("svc/"))
}
