// Package trigger decodes stimulus files into typed nodes.
//
// A trigger file holds a single document with a "nodes" list:
//
//	{"nodes": [{"id": "t1", "rational": false, "content": "...", "stability": 0.2, "links": []}]}
//
// JSON (.json, .onto) and YAML (.yaml, .yml) are accepted.
package trigger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/onto16/internal/apperr"
	"github.com/starford/onto16/internal/checksum"
	"github.com/starford/onto16/internal/models"
)

// Format selects the decoder for a trigger document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Trigger is a parsed stimulus.
type Trigger struct {
	Name     string        `json:"name"`
	Checksum string        `json:"checksum"`
	Nodes    []models.Node `json:"nodes"`
}

type document struct {
	Nodes []models.Node `json:"nodes" yaml:"nodes"`
}

// ReportSuffix marks run reports, which are never read back as triggers.
const ReportSuffix = ".report.json"

// IsTriggerFile reports whether name has a trigger file extension.
func IsTriggerFile(name string) bool {
	if strings.HasSuffix(strings.ToLower(name), ReportSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".onto", ".yaml", ".yml":
		return true
	}
	return false
}

// FormatFor picks the format from the file extension, or FormatAuto when unknown.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".onto":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// ParseFile parses data read from the file called name.
func ParseFile(name string, data []byte) (*Trigger, error) {
	t, err := Parse(data, FormatFor(name))
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", name, err)
	}
	t.Name = name
	return t, nil
}

// Parse decodes and validates a trigger document.
// All failures wrap apperr.ErrInvalidTrigger.
func Parse(data []byte, format Format) (*Trigger, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", apperr.ErrInvalidTrigger, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", apperr.ErrInvalidTrigger, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", apperr.ErrInvalidTrigger, format)
	}

	if doc.Nodes == nil {
		return nil, fmt.Errorf("%w: missing nodes list", apperr.ErrInvalidTrigger)
	}
	for i := range doc.Nodes {
		if err := validateNode(&doc.Nodes[i]); err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", apperr.ErrInvalidTrigger, i, err)
		}
	}

	return &Trigger{
		Checksum: checksum.Sum(data),
		Nodes:    doc.Nodes,
	}, nil
}

// sniff treats anything starting with an object or array as JSON, the rest as YAML.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// validateNode checks only what the driver needs to apply a node: an id, and
// link entries that can name one. Content and stability are taken as given.
func validateNode(n *models.Node) error {
	return validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required, validation.By(notBlank)),
		validation.Field(&n.Links, validation.Each(validation.Required, validation.By(notBlank))),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
