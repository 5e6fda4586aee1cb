// Package envfile finds and parses .env files and splits their values into
// the secret groups pushed to Secrets Manager.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// ConfigDir is the per-user directory searched for .env files.
const ConfigDir = ".plexusone"

// placeholderPrefix marks template values such as "your-api-key".
const placeholderPrefix = "your-"

// ErrNotFound is returned by Find when no candidate exists.
var ErrNotFound = errors.New("no .env file found")

// export KEY=VALUE, with export optional.
var lineRegex = regexp.MustCompile(`^\s*(export\s+)?([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// Parse reads KEY=VALUE lines. Blank lines, comments, empty values and
// placeholder values are skipped. Surrounding quotes are removed.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		matches := lineRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		key := matches[2]
		value := strings.Trim(strings.TrimSpace(matches[3]), `"'`)
		if value == "" || strings.HasPrefix(value, placeholderPrefix) {
			continue
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan env file: %w", err)
	}
	return vars, nil
}

// ReadFile parses the .env file at path.
func ReadFile(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Candidates lists the .env locations searched, in order: the working
// directory, its parent, the project directory under home and the global file
// under home.
func Candidates(home, project string) []string {
	candidates := []string{".env", filepath.Join("..", ".env")}
	if home == "" {
		return candidates
	}
	if project != "" {
		candidates = append(candidates, filepath.Join(home, ConfigDir, "projects", project, ".env"))
	}
	return append(candidates, filepath.Join(home, ConfigDir, ".env"))
}

// Find returns the first candidate that exists.
func Find(fs afero.Fs, home, project string) (string, error) {
	for _, path := range Candidates(home, project) {
		if ok, _ := afero.Exists(fs, path); ok {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Resolve locates an explicitly named env file. A relative path that does not
// exist is retried relative to the parent directory.
func Resolve(fs afero.Fs, path string) (string, bool) {
	if ok, _ := afero.Exists(fs, path); ok {
		return path, true
	}
	if filepath.IsAbs(path) {
		return "", false
	}
	parent := filepath.Join("..", path)
	if ok, _ := afero.Exists(fs, parent); ok {
		return parent, true
	}
	return "", false
}

// DetectProjectName reads stackName from a stack config in dir or its parent,
// falling back to the base name of dir.
func DetectProjectName(fs afero.Fs, dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, "..")} {
		for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
			if stackName := readStackName(fs, filepath.Join(d, name)); stackName != "" {
				return stackName
			}
		}
	}
	return filepath.Base(dir)
}

func readStackName(fs afero.Fs, path string) string {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return ""
	}
	var parser koanf.Parser = yaml.Parser()
	if filepath.Ext(path) == ".json" {
		parser = json.Parser()
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return ""
	}
	return k.String("stackName")
}
