package runner

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	v1 "github.com/xcompress/xcompress/apis/v1"
	"github.com/xcompress/xcompress/internal/engine"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tool", func(fl validator.FieldLevel) bool {
		_, ok := engine.ParseTool(fl.Field().String())
		return ok
	})
	return v
}

// ParseConfig parses a YAML or JSON configuration file and validates it.
func ParseConfig(data []byte) (v1.Config, error) {
	var cfg v1.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return v1.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := defaultValidator.Struct(cfg); err != nil {
		return v1.Config{}, fmt.Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads and parses the configuration file at path.
func LoadConfig(fs afero.Fs, path string) (v1.Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return v1.Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return ParseConfig(data)
}

// ResolveToolPaths merges the tool paths of cfg with overrides, which take precedence.
func ResolveToolPaths(cfg v1.Config, overrides map[engine.Tool]string) (engine.ToolPaths, error) {
	merged := make(map[engine.Tool]string, len(cfg.Tools)+len(overrides))
	for name, path := range cfg.Tools {
		tool, ok := engine.ParseTool(name)
		if !ok {
			return engine.ToolPaths{}, fmt.Errorf("unknown tool %q in config", name)
		}
		merged[tool] = path
	}
	for tool, path := range overrides {
		merged[tool] = path
	}
	return engine.NewToolPaths(merged)
}
