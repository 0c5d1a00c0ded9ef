package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// First returns one field/message pair in a stable-enough way for display.
// Order is not guaranteed across fields; callers only need "some" violation.
func (v Violations) First() (field, msg string, ok bool) {
	for f, m := range v {
		return f, m, true
	}
	return "", "", false
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "obrigatório"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "deve ser maior que zero"
	}
}

func MinInt(field string, val, minVal int, v Violations) {
	if val < minVal {
		v[field] = "valor mínimo não atingido"
	}
}
