package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override scalar stack
// settings, e.g. AGENTCORE_ENVIRONMENT=prod or AGENTCORE_STACK_NAME=my-stack.
const EnvPrefix = "AGENTCORE_"

// LoadStackConfigFromFile loads a StackConfig from a JSON or YAML file.
// The format is chosen by extension: .json, .yaml or .yml.
func LoadStackConfigFromFile(path string) (*StackConfig, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := load(file.Provider(path), parser)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadStackConfigFromJSON parses a StackConfig from JSON data.
func LoadStackConfigFromJSON(data []byte) (*StackConfig, error) {
	return load(rawbytes.Provider(data), json.Parser())
}

// LoadStackConfigFromYAML parses a StackConfig from YAML data.
func LoadStackConfigFromYAML(data []byte) (*StackConfig, error) {
	return load(rawbytes.Provider(data), yaml.Parser())
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml or .yml", filepath.Ext(path))
	}
}

// load layers the document under environment overrides, then checks the
// file schema. Semantic validation is left to the validation package.
func load(p koanf.Provider, parser koanf.Parser) (*StackConfig, error) {
	k := koanf.New(".")

	if err := k.Load(p, parser); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}

	var cfg StackConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config schema validation failed: %w", err)
	}

	return &cfg, nil
}

// envTransform maps AGENTCORE_STACK_NAME to stackName.
func envTransform(s string) string {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		r := []rune(parts[i])
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, "")
}
