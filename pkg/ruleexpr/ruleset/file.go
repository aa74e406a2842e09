package ruleset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileRule is one entry of a rule file. Exactly one of Expr or JSON is set.
// JSON may be an inline document or a string holding JSON text.
type fileRule struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Expr        string `yaml:"expr" json:"expr"`
	JSON        any    `yaml:"json" json:"json"`
}

type fileDoc struct {
	Rules []fileRule `yaml:"rules" json:"rules"`
}

// LoadFile reads rules from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
//
// A rule file looks like:
//
//	rules:
//	  - name: adult
//	    expr: "{age} >= 18"
//	  - name: domestic
//	    json: {lhs: "{country}", op: in, rhs: [US, CA]}
//
// LoadFile validates rule fields but does not parse expressions.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported rule file extension: %s", ext)
	}
}

// FromYAML parses a YAML rule document.
func FromYAML(data []byte) ([]Rule, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc.rules()
}

// FromJSON parses a JSON rule document.
func FromJSON(data []byte) ([]Rule, error) {
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return doc.rules()
}

func (d fileDoc) rules() ([]Rule, error) {
	rules := make([]Rule, 0, len(d.Rules))
	seen := make(map[string]bool, len(d.Rules))
	for i, fr := range d.Rules {
		r, err := fr.rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: duplicate rule name %s", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = true
		rules = append(rules, r)
	}
	return rules, nil
}

func (fr fileRule) rule() (Rule, error) {
	r := Rule{
		Name:        fr.Name,
		Description: fr.Description,
	}

	switch {
	case fr.Expr != "" && fr.JSON != nil:
		return Rule{}, fmt.Errorf("%w: rule %s: set only one of expr or json", ErrInvalidRule, fr.Name)
	case fr.Expr != "":
		r.Syntax = SyntaxText
		r.Source = fr.Expr
	case fr.JSON != nil:
		r.Syntax = SyntaxJSON
		if text, ok := fr.JSON.(string); ok {
			r.Source = text
			break
		}
		data, err := json.Marshal(fr.JSON)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: rule %s: encode json: %v", ErrInvalidRule, fr.Name, err)
		}
		r.Source = string(data)
	default:
		return Rule{}, fmt.Errorf("%w: rule %s: one of expr or json is required", ErrInvalidRule, fr.Name)
	}

	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}
