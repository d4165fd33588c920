package progress

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/japanesestudent/learn-web/internal/models"
)

// Normalize turns a steps-progress payload into a step id -> progress mapping.
//
// Each list element may be a step object whose "progress" is an array (the first element is
// taken) or a single object, or a flat progress record pointing at its step through
// "step_id" or "step". When several elements resolve to the same step, the first one wins.
// Elements of no known shape are skipped and counted in dropped.
// An error is returned only when the payload itself is not a list.
func Normalize(raw json.RawMessage) (steps map[int]models.Progress, dropped int, err error) {
	list, err := models.UnwrapList(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read steps progress list: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode steps progress list: %w", err)
	}

	steps = make(map[int]models.Progress, len(items))
	for _, item := range items {
		stepID, p, ok := normalizeItem(item)
		if !ok {
			dropped++
			continue
		}
		if _, exists := steps[stepID]; exists {
			continue
		}
		steps[stepID] = p
	}
	return steps, dropped, nil
}

func normalizeItem(item json.RawMessage) (int, models.Progress, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return 0, models.Progress{}, false
	}

	// Step object carrying nested progress
	if nested, ok := fields["progress"]; ok {
		stepID, ok := models.ParseRefID(fields["id"])
		if !ok {
			return 0, models.Progress{}, false
		}
		p, ok := nestedProgress(nested)
		if !ok {
			return 0, models.Progress{}, false
		}
		p.StepID = &stepID
		return stepID, p, true
	}

	// Flat progress record referencing its step
	_, hasStepID := fields["step_id"]
	_, hasStep := fields["step"]
	if !hasStepID && !hasStep {
		return 0, models.Progress{}, false
	}
	var p models.Progress
	if err := json.Unmarshal(item, &p); err != nil || p.StepID == nil {
		return 0, models.Progress{}, false
	}
	return *p.StepID, p, true
}

func nestedProgress(raw json.RawMessage) (models.Progress, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.Progress{}, false
	}

	switch raw[0] {
	case '[':
		var entries []models.Progress
		if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
			return models.Progress{}, false
		}
		// TODO: pick the most recent entry once the learn API documents the ordering of this array
		return entries[0], true
	case '{':
		var p models.Progress
		if err := json.Unmarshal(raw, &p); err != nil {
			return models.Progress{}, false
		}
		return p, true
	}
	return models.Progress{}, false
}
