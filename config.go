package dyntask

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTask reads a JSON task configuration from path. The "kind" field
// selects the defaults, and every other field present in the file overrides
// them. The result is validated.
func LoadTask(path string) (Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Task{}, err
	}
	return ParseTask(data)
}

// ParseTask is LoadTask on an in-memory document.
func ParseTask(data []byte) (Task, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Task{}, fmt.Errorf("parse task: %w", err)
	}
	t, err := DefaultTask(head.Kind)
	if err != nil {
		return Task{}, err
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, fmt.Errorf("parse task %s: %w", head.Kind, err)
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}
