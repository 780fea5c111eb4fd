package ppr

import (
	"strings"

	"ppr/internal/domain"
)

// ValidateDefinition checks the goal rules a JSON schema cannot express.
func ValidateDefinition(goal domain.Goal) error {
	if strings.TrimSpace(goal.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if MaxLaunches(goal.Frequency) == 0 {
		return &ValidationError{Field: "frequency", Reason: "unknown frequency " + string(goal.Frequency)}
	}
	if !domain.ValidInputType(goal.InputType) {
		return &ValidationError{Field: "input_type", Reason: "must be numeric or categorical"}
	}
	if goal.PPRWeight < 0 || goal.PPRWeight > 100 {
		return &ValidationError{Field: "ppr_weight", Reason: "0..100"}
	}
	return ValidateLevels(goal.InputType, goal.Levels)
}

func ValidateLevels(inputType domain.InputType, levels []domain.AchievementLevel) error {
	if len(levels) == 0 {
		return &ValidationError{Field: "levels", Reason: "at least one level required"}
	}
	seen := make(map[string]struct{}, len(levels))
	for _, level := range levels {
		if level.Percentage < 0 || level.Percentage > 100 {
			return &ValidationError{Field: "levels.percentage", Reason: "0..100"}
		}
		if level.TargetValue.IsZero() {
			return &ValidationError{Field: "levels.target_value", Reason: "required"}
		}
		switch inputType {
		case domain.InputNumeric:
			if _, ok := level.TargetValue.Float(); !ok {
				return &ValidationError{Field: "levels.target_value", Reason: "must be numeric"}
			}
		case domain.InputCategorical:
			label := level.TargetValue.String()
			if _, dup := seen[label]; dup {
				return &ValidationError{Field: "levels.target_value", Reason: "duplicate option " + label}
			}
			seen[label] = struct{}{}
		}
	}
	return nil
}

// ValidateValue checks a launch value before it is stored. Numeric goals
// only take finite numbers; categorical goals take any non-empty label.
func ValidateValue(inputType domain.InputType, value domain.Value) error {
	if value.IsZero() {
		return &ValidationError{Field: "value", Reason: "required"}
	}
	if inputType == domain.InputCategorical {
		return nil
	}
	if _, ok := value.Float(); !ok {
		return &ValidationError{Field: "value", Reason: "must be a finite number"}
	}
	return nil
}
