// Package prd loads product-requirements documents and turns their
// functional requirements into epics and user stories.
package prd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a product-requirements document. It may be written as JSON
// or YAML.
type Document struct {
	ProductName            string       `json:"product_name" yaml:"product_name"`
	Objectives             []string     `json:"objectives" yaml:"objectives"`
	FunctionalRequirements Requirements `json:"functional_requirements" yaml:"functional_requirements"`
	UserPersonas           []string     `json:"user_personas" yaml:"user_personas"`
}

// EpicRequirements lists the requirements grouped under one epic.
type EpicRequirements struct {
	Epic  string
	Items []string
}

// Requirements keeps functional requirements in document order. Both
// decoders read the mapping key by key instead of going through a Go map.
type Requirements []EpicRequirements

// UnmarshalJSON decodes {"epic": ["req", ...], ...} preserving key order.
func (r *Requirements) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("functional_requirements must be an object mapping epic names to requirement lists")
	}

	var out Requirements
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		epic, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("functional_requirements: unexpected key %v", keyTok)
		}
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("functional_requirements[%q]: %w", epic, err)
		}
		out = append(out, EpicRequirements{Epic: epic, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// UnmarshalYAML decodes a mapping node preserving key order.
func (r *Requirements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("functional_requirements must be a mapping of epic names to requirement lists (line %d)", value.Line)
	}

	out := make(Requirements, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		epic := value.Content[i].Value
		var items []string
		if err := value.Content[i+1].Decode(&items); err != nil {
			return fmt.Errorf("functional_requirements[%q]: %w", epic, err)
		}
		out = append(out, EpicRequirements{Epic: epic, Items: items})
	}

	*r = out
	return nil
}

// MarshalJSON writes the requirements back as an ordered object.
func (r Requirements) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, er := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(er.Epic)
		if err != nil {
			return nil, err
		}
		items, err := json.Marshal(er.Items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(items)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Load reads a PRD from path. Files ending in .yml or .yaml are parsed as
// YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PRD: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON PRD.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse PRD JSON: %w", err)
	}
	return &doc, nil
}

// ParseYAML decodes a YAML PRD.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse PRD YAML: %w", err)
	}
	return &doc, nil
}

// Sections are the parts of a PRD the pipeline reads.
type Sections struct {
	Objectives             []string
	FunctionalRequirements Requirements
	UserPersonas           []string
}

// ExtractSections pulls objectives, functional requirements and user
// personas out of doc. Missing sections come back empty.
func ExtractSections(doc *Document) Sections {
	sections := Sections{
		Objectives:             doc.Objectives,
		FunctionalRequirements: doc.FunctionalRequirements,
		UserPersonas:           doc.UserPersonas,
	}
	log.Printf("[PRD] Extracted sections: %d objectives, %d functional areas, %d user personas",
		len(sections.Objectives), len(sections.FunctionalRequirements), len(sections.UserPersonas))
	return sections
}

// GenerateEpicsAndStories produces one epic per functional area and one user
// story per requirement, both in document order.
func GenerateEpicsAndStories(sections Sections) (epics []string, stories []string) {
	epics = make([]string, 0, len(sections.FunctionalRequirements))
	stories = []string{}
	for _, er := range sections.FunctionalRequirements {
		epics = append(epics, EpicTitle(er.Epic))
		for _, req := range er.Items {
			stories = append(stories, UserStory(req))
		}
	}
	return epics, stories
}

// EpicTitle formats an epic label.
func EpicTitle(name string) string {
	return fmt.Sprintf("Epic: %s", name)
}

// UserStory formats a requirement as a user story.
func UserStory(requirement string) string {
	return fmt.Sprintf("As a user, I want %s so that I can improve productivity.", requirement)
}
