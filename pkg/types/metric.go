// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"

	"go.yaml.in/yaml/v3"
)

// Number constrains the value types a metric can carry.
type Number interface {
	~int | ~int64 | ~float64
}

// Metric is an explicit present/absent wrapper for a single repository
// metric. A metric that could not be fetched is Known == false; this is
// distinct from a metric that was measured as zero. Serialized forms use
// null for an unknown metric, never 0.
// Implements: prd002-metrics R1.3.
type Metric[T Number] struct {
	Value T
	Known bool
}

// Known returns a metric carrying v.
func Known[T Number](v T) Metric[T] {
	return Metric[T]{Value: v, Known: true}
}

// Unknown returns an absent metric.
func Unknown[T Number]() Metric[T] {
	return Metric[T]{}
}

// Or returns the metric value when known, fallback otherwise.
func (m Metric[T]) Or(fallback T) T {
	if m.Known {
		return m.Value
	}
	return fallback
}

// MarshalJSON renders the value, or null when unknown.
func (m Metric[T]) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Metric[T]{Value: v, Known: true}
	return nil
}

// MarshalYAML renders the value, or nil when unknown.
func (m Metric[T]) MarshalYAML() (any, error) {
	if !m.Known {
		return nil, nil
	}
	return m.Value, nil
}

// UnmarshalYAML accepts a number or null, mirroring MarshalYAML so saved
// reports read back losslessly.
func (m *Metric[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*m = Metric[T]{}
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*m = Metric[T]{Value: v, Known: true}
	return nil
}
