package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DJIMIGA/latigue/internal/models"
)

// templatesFile is the YAML document shape: a flat map of template name to
// template definition.
type templatesFile struct {
	Templates map[string]models.ProjectTemplate `yaml:"templates"`
}

// LoadTemplates reads project templates from a YAML file. A missing file is
// not an error; jobs simply run without a template.
func LoadTemplates(path string) (map[string]models.ProjectTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.ProjectTemplate{}, nil
		}
		return nil, fmt.Errorf("read templates file %s: %w", path, err)
	}
	return ParseTemplates(data)
}

// ParseTemplates decodes a templates YAML document. Every template's map key
// becomes its Name; inactive templates are kept but flagged.
func ParseTemplates(data []byte) (map[string]models.ProjectTemplate, error) {
	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	templates := make(map[string]models.ProjectTemplate, len(file.Templates))
	for name, tmpl := range file.Templates {
		tmpl.Name = name
		if tmpl.Pillar != "" && !models.ValidPillar(tmpl.Pillar) {
			return nil, fmt.Errorf("template %s: unknown pillar %q", name, tmpl.Pillar)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
