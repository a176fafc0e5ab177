package identity

import (
	"strings"

	"github.com/dropDatabas3/idlink/internal/config"
)

// ProviderInfo es lo que se expone a la UI.
type ProviderInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

// Registry responde qué providers están habilitados, en el orden declarado.
type Registry struct {
	enabled []ProviderInfo
	index   map[string]struct{}
}

// NewRegistry indexa los providers respetando el orden de la configuración.
func NewRegistry(providers config.Providers) *Registry {
	r := &Registry{index: map[string]struct{}{}}
	for _, p := range providers {
		if !p.Enabled {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.Key))
		if _, dup := r.index[key]; dup || key == "" {
			continue
		}
		r.index[key] = struct{}{}
		r.enabled = append(r.enabled, ProviderInfo{Key: key, DisplayName: p.DisplayName})
	}
	return r
}

// EnabledProviders retorna una copia; el caller puede modificarla.
func (r *Registry) EnabledProviders() []ProviderInfo {
	out := make([]ProviderInfo, len(r.enabled))
	copy(out, r.enabled)
	return out
}

// IsEnabled es false para cualquier key que no esté configurada.
func (r *Registry) IsEnabled(key string) bool {
	_, ok := r.index[strings.ToLower(strings.TrimSpace(key))]
	return ok
}
