// Package filter implements the task query engine: condition normalization,
// filter evaluation, sorting, and grouping over in-memory task collections.
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/taskpro/taskpro/internal/models"
)

// rawConditionSet mirrors the loose persisted shape: either a bare condition
// array or an {items, logic} wrapper with an optional logic string.
type rawConditionSet struct {
	Items []models.Condition `json:"items"`
	Logic string             `json:"logic"`
}

// Normalize parses a persisted conditions payload into a canonical
// ConditionSet. It accepts two shapes:
//
//	[{"type":"due","operator":"equals","value":"today"}, ...]
//	{"items":[...], "logic":"or"}
//
// A missing or empty logic defaults to "and". Normalization happens once at
// the persistence boundary so the evaluator never branches on shape.
func Normalize(data []byte) (models.ConditionSet, error) {
	if len(data) == 0 {
		return models.ConditionSet{Combinator: models.CombinatorAnd}, nil
	}

	// Bare array form
	var items []models.Condition
	if err := json.Unmarshal(data, &items); err == nil {
		return models.ConditionSet{Combinator: models.CombinatorAnd, Items: items}, nil
	}

	// Wrapper form
	var raw rawConditionSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.ConditionSet{}, fmt.Errorf("parse conditions: %w", err)
	}
	return models.ConditionSet{
		Combinator: models.NormalizeCombinator(raw.Logic),
		Items:      raw.Items,
	}, nil
}

// MarshalConditions serializes a ConditionSet for persistence. Always writes
// the canonical wrapper form.
func MarshalConditions(cs models.ConditionSet) ([]byte, error) {
	if cs.Combinator == "" {
		cs.Combinator = models.CombinatorAnd
	}
	out := rawConditionSet{Items: cs.Items, Logic: string(cs.Combinator)}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal conditions: %w", err)
	}
	return data, nil
}

// ValidateConditions rejects conditions that cannot be created through the
// UI: unknown types and operators are creation-time errors even though the
// evaluator tolerates unknown types at read time.
func ValidateConditions(cs models.ConditionSet) error {
	for i, c := range cs.Items {
		if !models.IsValidConditionType(c.Type) {
			return fmt.Errorf("condition %d: unknown type %q", i, c.Type)
		}
		if !models.IsValidOperator(c.Operator) {
			return fmt.Errorf("condition %d: unknown operator %q", i, c.Operator)
		}
		if c.Value == "" {
			return fmt.Errorf("condition %d: empty value", i)
		}
	}
	return nil
}
