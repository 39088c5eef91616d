package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ReactionRule describes a linear transformation of goods
// (inputs -> outputs, led by one good). Rules are parsed from configuration
// and attached to the run, but the simulation loop never applies them.
type ReactionRule struct {
	ID        string       `json:"id" yaml:"id"`
	SizeClass string       `json:"size_class" yaml:"size_class"`
	Name      string       `json:"name" yaml:"name"`
	Lead      int          `json:"lead" yaml:"lead"` // index of the lead good
	Inputs    Coefficients `json:"inputs" yaml:"inputs"`
	Outputs   Coefficients `json:"outputs" yaml:"outputs"`
}

// GoodCoefficient is one (good index, coefficient) entry.
type GoodCoefficient struct {
	Good        int
	Coefficient float64
}

// Coefficients is an ordered good->coefficient mapping, sorted by good index.
// It decodes from a JSON/YAML object keyed by good index, e.g. {"0": 1.0, "35": 1.0}.
type Coefficients []GoodCoefficient

// NewCoefficients builds ordered coefficients from a map.
func NewCoefficients(m map[int]float64) Coefficients {
	out := make(Coefficients, 0, len(m))
	for good, coef := range m {
		out = append(out, GoodCoefficient{Good: good, Coefficient: coef})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Good < out[j].Good })
	return out
}

// Get returns the coefficient for good, if present.
func (c Coefficients) Get(good int) (float64, bool) {
	idx := sort.Search(len(c), func(i int) bool { return c[i].Good >= good })
	if idx < len(c) && c[idx].Good == good {
		return c[idx].Coefficient, true
	}
	return 0, false
}

// Map returns the coefficients as a plain map.
func (c Coefficients) Map() map[int]float64 {
	m := make(map[int]float64, len(c))
	for _, gc := range c {
		m[gc.Good] = gc.Coefficient
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (c Coefficients) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coefficients) UnmarshalJSON(data []byte) error {
	var m map[int]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode reaction coefficients: %w", err)
	}
	*c = NewCoefficients(m)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Coefficients) MarshalYAML() (interface{}, error) {
	return c.Map(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Coefficients) UnmarshalYAML(node *yaml.Node) error {
	var m map[int]float64
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("decode reaction coefficients: %w", err)
	}
	*c = NewCoefficients(m)
	return nil
}
