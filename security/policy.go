package security

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Policy is a declarative capability allow-list: each field is a set of
// doublestar glob patterns (e.g. "/data/**/*.json") a subject must match to
// be granted, per SPEC_FULL.md's "Security policy documents" supplemental
// feature. A zero-value Policy (or a nil *Policy) grants nothing, matching
// spec.md §6's deny-all default.
type Policy struct {
	FilesystemRead  []string `yaml:"filesystem_read"`
	FilesystemWrite []string `yaml:"filesystem_write"`
	Network         []string `yaml:"network"`
	Process         []string `yaml:"process"`
	Environment     []string `yaml:"environment"`
}

func (p *Policy) allows(patterns []string, subject string) bool {
	if p == nil {
		return false
	}
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, subject); ok && err == nil {
			return true
		}
	}
	return false
}

// LoadPolicy parses a YAML capability document into a Policy.
func LoadPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("security: parsing policy: %w", err)
	}
	return &p, nil
}

// LoadPolicyFile reads and parses a policy document from disk.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security: reading policy %s: %w", path, err)
	}
	return LoadPolicy(data)
}
