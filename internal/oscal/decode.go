// Package oscal reads OSCAL catalogs, profiles and component definitions
// from a trestle workspace and converts them to the model types.
package oscal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	oscalTypes "github.com/defenseunicorns/go-oscal/src/types/oscal-1-1-2"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// document is the top-level envelope of an OSCAL file. Exactly one model is
// expected to be set.
type document struct {
	Catalog             *oscalTypes.Catalog             `json:"catalog,omitempty"`
	Profile             *oscalTypes.Profile             `json:"profile,omitempty"`
	ComponentDefinition *oscalTypes.ComponentDefinition `json:"component-definition,omitempty"`
}

func (d document) kind() string {
	switch {
	case d.Catalog != nil:
		return "catalog"
	case d.Profile != nil:
		return "profile"
	case d.ComponentDefinition != nil:
		return "component-definition"
	}
	return "unknown"
}

// readDocument decodes a JSON or YAML OSCAL file.
func readDocument(path string) (document, error) {
	var doc document
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return doc, errors.Wrapf(err, "reading %s", path)
	}
	data, err = toJSON(path, data)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrapf(err, "decoding %s", path)
	}
	return doc, nil
}

func toJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %s to json", path)
		}
		return out, nil
	}
	return data, nil
}
