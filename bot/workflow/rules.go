package workflow

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// SemanticType is a closed set of canonical format checks.
type SemanticType string

const (
	TypeNumber SemanticType = "number"
	TypeEmail  SemanticType = "email"
	TypePhone  SemanticType = "phone"
)

// Rule describes how to validate raw user input for a step. Fields
// combine additively; checks run in a fixed order (required → length →
// pattern → semantic type → numeric bounds → custom) and the first
// failure short-circuits.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   string
	Type      SemanticType
	Min       *float64
	Max       *float64

	// Custom runs last. It returns ok plus an optional human-readable
	// error message; an empty message falls back to the generic one.
	Custom func(value string) (bool, string)

	// Messages override the default error texts per check name
	// (required, length, pattern, type, range, custom).
	Messages map[string]string
}

// ValidationResult is the outcome of validating one input.
type ValidationResult struct {
	Valid     bool
	Error     string
	Sanitized string
}

var validate = validator.New()

// Validate checks raw input against the rule. It is a pure function:
// same input and rule always yield the same result.
func Validate(raw string, r *Rule) ValidationResult {
	value := strings.TrimSpace(raw)
	if r == nil {
		return ValidationResult{Valid: true, Sanitized: value}
	}

	if r.Required && value == "" {
		return fail(r, "required", "Ce champ est obligatoire.")
	}
	if value == "" {
		return ValidationResult{Valid: true, Sanitized: value}
	}

	// Lengths count characters, not bytes: accented input must not be
	// over-counted.
	length := utf8.RuneCountInString(value)
	if r.MinLength > 0 && length < r.MinLength {
		return fail(r, "length", "Réponse trop courte.")
	}
	if r.MaxLength > 0 && length > r.MaxLength {
		return fail(r, "length", "Réponse trop longue.")
	}

	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		if err != nil || !re.MatchString(value) {
			return fail(r, "pattern", "Format invalide.")
		}
	}

	switch r.Type {
	case TypeNumber:
		if validate.Var(value, "numeric") != nil {
			return fail(r, "type", "Veuillez entrer un nombre.")
		}
	case TypeEmail:
		if validate.Var(value, "email") != nil {
			return fail(r, "type", "Adresse e-mail invalide.")
		}
	case TypePhone:
		normalized := NormalizePhone(value)
		if validate.Var(normalized, "e164") != nil {
			return fail(r, "type", "Numéro de téléphone invalide.")
		}
		value = normalized
	}

	if r.Min != nil || r.Max != nil {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fail(r, "range", "Veuillez entrer un nombre.")
		}
		if r.Min != nil && n < *r.Min {
			return fail(r, "range", "Valeur trop petite.")
		}
		if r.Max != nil && n > *r.Max {
			return fail(r, "range", "Valeur trop grande.")
		}
	}

	if r.Custom != nil {
		ok, msg := r.Custom(value)
		if !ok {
			if msg == "" {
				msg = "Valeur invalide."
			}
			if override, has := r.Messages["custom"]; has {
				msg = override
			}
			return ValidationResult{Valid: false, Error: msg}
		}
	}

	return ValidationResult{Valid: true, Sanitized: value}
}

func fail(r *Rule, check, fallback string) ValidationResult {
	if msg, ok := r.Messages[check]; ok {
		return ValidationResult{Valid: false, Error: msg}
	}
	return ValidationResult{Valid: false, Error: fallback}
}

// NormalizePhone strips non-digit characters and prepends "+".
func NormalizePhone(phone string) string {
	digits := ""
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			digits += string(ch)
		}
	}
	if len(digits) > 0 {
		digits = "+" + digits
	}
	return digits
}
