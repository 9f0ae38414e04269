package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Baseline feeds write "" or null for nodes nobody has touched yet. Both
// decode to an unset timestamp; anything else must be RFC3339.

// optionalTime decodes a timestamp that may be empty or null.
type optionalTime struct {
	t *time.Time
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return &t, nil
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		o.t = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t, err := parseOptionalTime(s)
	if err != nil {
		return err
	}
	o.t = t
	return nil
}

func (o *optionalTime) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("timestamp: expected a scalar at line %d", n.Line)
	}
	if n.Tag == "!!null" {
		o.t = nil
		return nil
	}
	t, err := parseOptionalTime(n.Value)
	if err != nil {
		return err
	}
	o.t = t
	return nil
}

func (o optionalTime) value() time.Time {
	if o.t == nil {
		return time.Time{}
	}
	return *o.t
}

// takeTime removes key from a YAML mapping and decodes its value. The
// returned node is a shallow copy; n is left untouched.
func takeTime(n *yaml.Node, key string) (*yaml.Node, optionalTime, error) {
	var ot optionalTime
	if n.Kind != yaml.MappingNode {
		return n, ot, nil
	}
	c := *n
	c.Content = make([]*yaml.Node, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Value == key {
			if err := v.Decode(&ot); err != nil {
				return nil, ot, err
			}
			continue
		}
		c.Content = append(c.Content, k, v)
	}
	return &c, ot, nil
}

func (c *Comment) UnmarshalJSON(b []byte) error {
	type plain Comment
	aux := struct {
		*plain
		Timestamp optionalTime `json:"timestamp"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Timestamp = aux.Timestamp.value()
	return nil
}

func (c *Comment) UnmarshalYAML(n *yaml.Node) error {
	type plain Comment
	rest, ts, err := takeTime(n, "timestamp")
	if err != nil {
		return err
	}
	if err := rest.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Timestamp = ts.value()
	return nil
}

func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	aux := struct {
		*plain
		LastUpdatedAt optionalTime `json:"lastUpdatedAt"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.LastUpdatedAt = aux.LastUpdatedAt.t
	return nil
}

func (t *Task) UnmarshalYAML(n *yaml.Node) error {
	type plain Task
	rest, at, err := takeTime(n, "lastUpdatedAt")
	if err != nil {
		return err
	}
	if err := rest.Decode((*plain)(t)); err != nil {
		return err
	}
	t.LastUpdatedAt = at.t
	return nil
}

func (s *Subprocess) UnmarshalJSON(b []byte) error {
	type plain Subprocess
	aux := struct {
		*plain
		LastUpdatedAt optionalTime `json:"lastUpdatedAt"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.LastUpdatedAt = aux.LastUpdatedAt.t
	return nil
}

func (s *Subprocess) UnmarshalYAML(n *yaml.Node) error {
	type plain Subprocess
	rest, at, err := takeTime(n, "lastUpdatedAt")
	if err != nil {
		return err
	}
	if err := rest.Decode((*plain)(s)); err != nil {
		return err
	}
	s.LastUpdatedAt = at.t
	return nil
}

func (p *Process) UnmarshalJSON(b []byte) error {
	type plain Process
	aux := struct {
		*plain
		LastUpdatedAt optionalTime `json:"lastUpdatedAt"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.LastUpdatedAt = aux.LastUpdatedAt.t
	return nil
}

func (p *Process) UnmarshalYAML(n *yaml.Node) error {
	type plain Process
	rest, at, err := takeTime(n, "lastUpdatedAt")
	if err != nil {
		return err
	}
	if err := rest.Decode((*plain)(p)); err != nil {
		return err
	}
	p.LastUpdatedAt = at.t
	return nil
}
