// Package plugins adapts externally authored analyzers and providers
// to the format extension contract. Plugins register callable handles
// through the host API; every invocation is wrapped with fault
// isolation and a timeout so a misbehaving plugin degrades to an
// empty result instead of aborting interpretation or traversal.
package plugins

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrIncompatibleVersion is returned when a plugin's version requirements are not met.
var ErrIncompatibleVersion = errors.New("incompatible plugin version")

// HostVersion is the version of the plugin host system.
const HostVersion = "0.2.0"

// Plugin kinds accepted by the host.
const (
	// KindDecoder is a full format analyzer supplied by a plugin.
	KindDecoder = "decoder"
	// KindTrait annotates interpretations with descriptive text.
	KindTrait = "trait"
	// KindRates supplies currency exchange rates.
	KindRates = "rates"
)

// Manifest describes a plugin at registration time.
type Manifest struct {
	PluginID string `json:"plugin_id"`
	Version  string `json:"version"`
	// Kind is one of "decoder", "trait", "rates".
	Kind string `json:"kind"`
	// MinHostVersion declares the minimum host version required,
	// as a semantic version (e.g., "0.2.0").
	MinHostVersion string `json:"min_host_version,omitempty"`
	// License is a short license identifier (e.g., "MIT", "Apache-2.0").
	License string `json:"license,omitempty"`
	// Format documents the format a decoder plugin implements.
	// Required for decoder plugins, ignored for others.
	Format *FormatMeta `json:"format,omitempty"`
}

// FormatMeta is the declared documentation metadata of a decoder
// plugin's format.
type FormatMeta struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// manifestSchema validates the shape of plugin.json documents before
// any declared metadata is trusted.
const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["plugin_id", "version", "kind"],
  "properties": {
    "plugin_id": {"type": "string", "minLength": 1},
    "version": {"type": "string", "pattern": "^v?[0-9]+(\\.[0-9]+){0,2}$"},
    "kind": {"type": "string", "enum": ["decoder", "trait", "rates"]},
    "min_host_version": {"type": "string", "pattern": "^v?[0-9]+(\\.[0-9]+){0,2}$"},
    "license": {"type": "string"},
    "format": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
        "name": {"type": "string", "minLength": 1},
        "category": {"type": "string"},
        "description": {"type": "string"},
        "aliases": {"type": "array", "items": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"}},
        "examples": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

// ParseManifest validates raw manifest JSON against the schema and
// decodes it.
func ParseManifest(data []byte) (*Manifest, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// CheckCompatibility verifies the manifest's host version requirement
// against HostVersion.
func (m *Manifest) CheckCompatibility() error {
	if m.MinHostVersion == "" {
		return nil
	}
	required, err := ParseVersion(m.MinHostVersion)
	if err != nil {
		return fmt.Errorf("%w: bad min_host_version %q: %v", ErrIncompatibleVersion, m.MinHostVersion, err)
	}
	host, err := ParseVersion(HostVersion)
	if err != nil {
		return err
	}
	if !host.IsCompatibleWith(required) {
		return fmt.Errorf("%w: plugin %s requires host >= %s, host is %s",
			ErrIncompatibleVersion, m.PluginID, m.MinHostVersion, HostVersion)
	}
	return nil
}

// validate checks semantic requirements beyond the JSON schema.
func (m *Manifest) validate() error {
	if m.PluginID == "" {
		return fmt.Errorf("manifest has empty plugin_id")
	}
	switch m.Kind {
	case KindDecoder:
		if m.Format == nil || m.Format.ID == "" {
			return fmt.Errorf("decoder plugin %s declares no format", m.PluginID)
		}
	case KindTrait, KindRates:
	default:
		return fmt.Errorf("plugin %s has unknown kind %q", m.PluginID, m.Kind)
	}
	return m.CheckCompatibility()
}
