// Package profileio reads and writes profile documents.
package profileio

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/onto16/internal/apperr"
	"github.com/starford/onto16/internal/canonical"
	"github.com/starford/onto16/internal/models"
	"github.com/starford/onto16/internal/trigger"
)

// ParseFile decodes a profile document, choosing the format from name.
func ParseFile(name string, data []byte) (models.Profile, error) {
	p, err := Parse(data, trigger.FormatFor(name))
	if err != nil {
		return models.Profile{}, fmt.Errorf("profile %s: %w", name, err)
	}
	return p, nil
}

// Parse decodes a JSON or YAML profile document. Field values are not validated.
// Errors wrap apperr.ErrInvalidProfile.
func Parse(data []byte, format trigger.Format) (models.Profile, error) {
	if format == trigger.FormatAuto {
		if json.Valid(data) {
			format = trigger.FormatJSON
		} else {
			format = trigger.FormatYAML
		}
	}

	var p models.Profile
	switch format {
	case trigger.FormatJSON:
		if err := json.Unmarshal(data, &p); err != nil {
			return models.Profile{}, fmt.Errorf("%w: decode json: %w", apperr.ErrInvalidProfile, err)
		}
	case trigger.FormatYAML:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return models.Profile{}, fmt.Errorf("%w: decode yaml: %w", apperr.ErrInvalidProfile, err)
		}
	default:
		return models.Profile{}, fmt.Errorf("%w: unknown format %q", apperr.ErrInvalidProfile, format)
	}
	return p, nil
}

// Marshal returns the canonical JSON document for p, which Parse reads back.
func Marshal(p models.Profile) []byte {
	return canonical.EncodeProfile(p)
}
