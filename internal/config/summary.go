package config

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// MarshalSummary renders the normalized configuration as YAML.
func (c *ProjectConfig) MarshalSummary() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
