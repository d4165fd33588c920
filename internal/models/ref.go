package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParseRefID extracts an identifier from a JSON reference.
//
// The learn API references related objects either by number, by numeric string or by an
// embedded object carrying an "id" field. ok is false for null, empty or unrecognized values.
func ParseRefID(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	switch raw[0] {
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, false
		}
		return ParseRefID(obj.ID)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		id, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, false
		}
		return id, true
	}
}

// UnmarshalJSON decodes a progress record, accepting "course", "step" and "step_id"
// references in any form ParseRefID understands.
func (p *Progress) UnmarshalJSON(data []byte) error {
	type alias Progress
	aux := struct {
		*alias
		Course json.RawMessage `json:"course"`
		Step   json.RawMessage `json:"step"`
		StepID json.RawMessage `json:"step_id"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.CourseID = nil
	p.StepID = nil
	if id, ok := ParseRefID(aux.Course); ok {
		p.CourseID = &id
	}
	if id, ok := ParseRefID(aux.StepID); ok {
		p.StepID = &id
	} else if id, ok := ParseRefID(aux.Step); ok {
		p.StepID = &id
	}
	return nil
}

// UnmarshalJSON decodes an enrollment given either as a full object or as a bare
// reference, in which case only ID is set.
func (e *Enrollment) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || raw[0] != '{' {
		id, ok := ParseRefID(raw)
		if !ok {
			return fmt.Errorf("invalid enrollment reference %s", raw)
		}
		*e = Enrollment{ID: id}
		return nil
	}

	type alias Enrollment
	aux := struct {
		*alias
		ID json.RawMessage `json:"id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	e.ID, _ = ParseRefID(aux.ID)
	return nil
}

// UnmarshalJSON decodes a course step, accepting the "course" reference in any form
// ParseRefID understands
func (s *CourseStep) UnmarshalJSON(data []byte) error {
	type alias CourseStep
	aux := struct {
		*alias
		Course json.RawMessage `json:"course"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.CourseID, _ = ParseRefID(aux.Course)
	return nil
}

// UnmarshalJSON decodes the aggregate progress, accepting the "course" reference in any
// form ParseRefID understands
func (p *CourseProgress) UnmarshalJSON(data []byte) error {
	type alias CourseProgress
	aux := struct {
		*alias
		Course json.RawMessage `json:"course"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.CourseID, _ = ParseRefID(aux.Course)
	return nil
}

// UnwrapList returns the JSON array carried by a list response.
//
// Lists arrive either bare or wrapped in an object under "results", "steps" or "data".
func UnwrapList(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty list payload")
	}
	switch raw[0] {
	case '[':
		return raw, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, err
		}
		for _, key := range []string{"results", "steps", "data"} {
			if inner, ok := wrapper[key]; ok {
				inner = bytes.TrimSpace(inner)
				if len(inner) == 0 || inner[0] != '[' {
					return nil, fmt.Errorf("%q is not a list", key)
				}
				return inner, nil
			}
		}
		return nil, fmt.Errorf("no list found in response object")
	}
	return nil, fmt.Errorf("unexpected list payload")
}
