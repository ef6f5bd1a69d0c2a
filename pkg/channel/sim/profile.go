package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sigflow/sigflow-go/pkg/channel"
)

// Profile describes a set of simulated channels to seed into a store,
// typically loaded from a YAML file checked in next to a test or demo.
type Profile struct {
	Channels []ProfileChannel `yaml:"channels"`
}

// ProfileChannel is one seeded channel.
type ProfileChannel struct {
	PV        string   `yaml:"pv"`
	Kind      string   `yaml:"kind"`
	Value     any      `yaml:"value,omitempty"`
	Choices   []string `yaml:"choices,omitempty"`
	Units     string   `yaml:"units,omitempty"`
	Precision *int     `yaml:"precision,omitempty"`
}

// ParseProfile parses a YAML profile document.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing sim profile: %w", err)
	}
	for i, pc := range p.Channels {
		if pc.PV == "" {
			return Profile{}, fmt.Errorf("sim profile channel %d: missing pv", i)
		}
		if _, err := kindFromString(pc.Kind); err != nil {
			return Profile{}, fmt.Errorf("sim profile channel %q: %w", pc.PV, err)
		}
	}
	return p, nil
}

// LoadProfile reads and parses a YAML profile file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading sim profile: %w", err)
	}
	return ParseProfile(data)
}

// Apply seeds the store with the profile's channels. Existing channels
// for the same pvs are replaced.
func (s *Store) Apply(p Profile) error {
	for _, pc := range p.Channels {
		kind, err := kindFromString(pc.Kind)
		if err != nil {
			return err
		}
		c := newChannel(pc.PV, kind, pc.Choices)
		if pc.Units != "" {
			c.units = pc.Units
		}
		if pc.Precision != nil {
			c.precision = *pc.Precision
		}
		if pc.Value != nil {
			normalized, err := c.normalize(coerceYAML(kind, pc.Value))
			if err != nil {
				return fmt.Errorf("sim profile channel %q: %w", pc.PV, err)
			}
			c.setValueLocked(normalized)
		}
		s.Add(c)
	}
	return nil
}

func kindFromString(name string) (channel.Kind, error) {
	switch name {
	case "string":
		return channel.KindString, nil
	case "integer":
		return channel.KindInteger, nil
	case "number":
		return channel.KindNumber, nil
	case "boolean":
		return channel.KindBoolean, nil
	case "enum":
		return channel.KindEnum, nil
	case "array":
		return channel.KindArray, nil
	default:
		return 0, fmt.Errorf("unknown channel kind %q", name)
	}
}

// coerceYAML maps the types yaml.v3 produces onto the canonical value
// representation, e.g. "value: 5" decodes as int but seeds a number
// channel as float64 and an array of ints/floats as []float64.
func coerceYAML(kind channel.Kind, value any) any {
	switch kind {
	case channel.KindInteger:
		if v, ok := value.(int); ok {
			return int64(v)
		}
	case channel.KindNumber:
		if v, ok := value.(int); ok {
			return float64(v)
		}
	case channel.KindArray:
		if items, ok := value.([]any); ok {
			arr := make([]float64, 0, len(items))
			for _, item := range items {
				switch v := item.(type) {
				case int:
					arr = append(arr, float64(v))
				case float64:
					arr = append(arr, v)
				default:
					return value
				}
			}
			return arr
		}
	}
	return value
}
