package domain

import "strings"

// ParseFrequency accepts the canonical names and the legacy Portuguese ones.
// Unknown input is returned as-is so the quota policy can flag it.
func ParseFrequency(raw string) Frequency {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "monthly", "mensal":
		return FrequencyMonthly
	case "quarterly", "trimestral":
		return FrequencyQuarterly
	case "semiannual", "semestral":
		return FrequencySemiannual
	default:
		return Frequency(raw)
	}
}

func ParseInputType(raw string) InputType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "numeric":
		return InputNumeric
	case "categorical", "options":
		return InputCategorical
	default:
		return InputType(raw)
	}
}

func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "superuser":
		return RoleSuperuser
	case "admin":
		return RoleAdmin
	case "manager", "gestor":
		return RoleManager
	case "evaluator", "avaliador":
		return RoleEvaluator
	case "collaborator", "colaborador":
		return RoleCollaborator
	default:
		return Role(raw)
	}
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func ValidInputType(t InputType) bool {
	switch t {
	case InputNumeric, InputCategorical:
		return true
	default:
		return false
	}
}

func ValidRole(r Role) bool {
	switch r {
	case RoleSuperuser, RoleAdmin, RoleManager, RoleEvaluator, RoleCollaborator:
		return true
	default:
		return false
	}
}
