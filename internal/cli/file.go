package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avelst/skein/pkg/domain"
)

// LoadWorkflow reads a workflow definition from a YAML or JSON file,
// picking the codec by extension.
func LoadWorkflow(path string) (domain.Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("read workflow file: %w", err)
	}

	var w domain.Workflow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &w); err != nil {
			return domain.Workflow{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &w); err != nil {
			return domain.Workflow{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return domain.Workflow{}, fmt.Errorf("unsupported workflow file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	return w, nil
}

// SaveWorkflow writes a workflow definition to a YAML or JSON file,
// picking the codec by extension.
func SaveWorkflow(path string, w domain.Workflow) error {
	var raw []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(w)
	case ".json":
		raw, err = json.MarshalIndent(w, "", "  ")
	default:
		return fmt.Errorf("unsupported workflow file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write workflow file: %w", err)
	}
	return nil
}
