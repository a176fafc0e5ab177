package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/idlink/internal/validation"
)

// Provider es una entrada de la sección providers.
type Provider struct {
	Key         string
	DisplayName string
	Enabled     bool
}

// Providers se declara como mapping en YAML pero conserva el orden:
//
//	providers:
//	  google: {display_name: Google, enabled: true}
//	  github: {display_name: GitHub, enabled: false}
type Providers []Provider

func (p *Providers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("config: providers must be a mapping (line %d)", node.Line)
	}
	out := make(Providers, 0, len(node.Content)/2)
	seen := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(node.Content[i].Value))
		if !validation.ValidProviderKey(key) {
			return fmt.Errorf("config: invalid provider key %q (line %d)", key, node.Content[i].Line)
		}
		if seen[key] {
			return fmt.Errorf("config: duplicate provider %q (line %d)", key, node.Content[i].Line)
		}
		seen[key] = true

		var body struct {
			DisplayName string `yaml:"display_name"`
			Enabled     bool   `yaml:"enabled"`
		}
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("config: provider %q: %w", key, err)
		}
		if body.DisplayName == "" {
			body.DisplayName = key
		}
		out = append(out, Provider{Key: key, DisplayName: body.DisplayName, Enabled: body.Enabled})
	}
	*p = out
	return nil
}
