package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestValidateNilRule(t *testing.T) {
	res := Validate("  anything  ", nil)
	assert.True(t, res.Valid)
	assert.Equal(t, "anything", res.Sanitized)
}

func TestValidateRequired(t *testing.T) {
	r := &Rule{Required: true}

	res := Validate("   ", r)
	assert.False(t, res.Valid)
	assert.Equal(t, "Ce champ est obligatoire.", res.Error)

	res = Validate("ok", r)
	assert.True(t, res.Valid)
}

func TestValidateOptionalEmptySkipsChecks(t *testing.T) {
	// An optional empty value passes even when stricter checks are declared.
	r := &Rule{Type: TypeEmail, MinLength: 5}
	res := Validate("", r)
	assert.True(t, res.Valid)
	assert.Equal(t, "", res.Sanitized)
}

func TestValidateLength(t *testing.T) {
	r := &Rule{MinLength: 3, MaxLength: 5}

	assert.False(t, Validate("ab", r).Valid)
	assert.False(t, Validate("abcdef", r).Valid)
	assert.True(t, Validate("abcd", r).Valid)
}

func TestValidateLengthCountsRunes(t *testing.T) {
	r := &Rule{MinLength: 2, MaxLength: 4}

	// "Éloé" is four characters but more bytes.
	assert.True(t, Validate("Éloé", r).Valid)
	assert.True(t, Validate("Éé", r).Valid)
	assert.False(t, Validate("É", r).Valid)
	assert.False(t, Validate("Élodie", r).Valid)
}

func TestValidatePattern(t *testing.T) {
	r := &Rule{Pattern: `^\d+$`}

	assert.True(t, Validate("12345", r).Valid)
	assert.False(t, Validate("12a45", r).Valid)
}

func TestValidateSemanticTypes(t *testing.T) {
	assert.True(t, Validate("42", &Rule{Type: TypeNumber}).Valid)
	assert.False(t, Validate("quarante", &Rule{Type: TypeNumber}).Valid)

	assert.True(t, Validate("jean@exemple.cm", &Rule{Type: TypeEmail}).Valid)
	assert.False(t, Validate("pas-un-email", &Rule{Type: TypeEmail}).Valid)
}

func TestValidatePhoneNormalizes(t *testing.T) {
	res := Validate("+237 6 99 11 22 33", &Rule{Type: TypePhone})
	assert.True(t, res.Valid)
	assert.Equal(t, "+237699112233", res.Sanitized)

	assert.False(t, Validate("abc", &Rule{Type: TypePhone}).Valid)
}

func TestValidateRange(t *testing.T) {
	r := &Rule{Min: floatPtr(10), Max: floatPtr(100)}

	assert.False(t, Validate("5", r).Valid)
	assert.False(t, Validate("500", r).Valid)
	assert.True(t, Validate("50", r).Valid)
	assert.False(t, Validate("beaucoup", r).Valid)
}

func TestValidateCheckOrder(t *testing.T) {
	// Length fails before the pattern gets a chance: only the first
	// failure is reported.
	r := &Rule{
		MinLength: 5,
		Pattern:   `^\d+$`,
		Messages: map[string]string{
			"length":  "trop court",
			"pattern": "chiffres uniquement",
		},
	}
	res := Validate("ab", r)
	assert.False(t, res.Valid)
	assert.Equal(t, "trop court", res.Error)
}

func TestValidateCustom(t *testing.T) {
	r := &Rule{
		Custom: func(v string) (bool, string) {
			return v == "oui", "dites oui"
		},
	}

	assert.True(t, Validate("oui", r).Valid)

	res := Validate("non", r)
	assert.False(t, res.Valid)
	assert.Equal(t, "dites oui", res.Error)
}

func TestValidateIsDeterministic(t *testing.T) {
	r := &Rule{Required: true, MinLength: 2, Pattern: `^\d+$`, Type: TypeNumber}
	first := Validate("1234", r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate("1234", r))
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+237699112233", NormalizePhone("237 699-11-22-33"))
	assert.Equal(t, "", NormalizePhone("no digits"))
}
