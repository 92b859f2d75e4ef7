package form

import (
	"fmt"
	"testing"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validValues() Values {
	return Values{
		KeyProtein:  "100",
		KeyCarbs:    "200",
		KeyFats:     "50",
		KeyVitaminC: "60",
		KeyCalcium:  "800",
		KeyBudget:   "20",
	}
}

func TestValidateAcceptsPositiveValues(t *testing.T) {
	errs, ok := Validate(validValues())
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidateRejectsNonPositivePerField(t *testing.T) {
	bad := []string{"0", "-1", "-0.5", "abc", "", "   ", "NaN", "Inf", "-Inf", "1e400", "0x", "12abc", "0x1p4", "-0X1.8p1", "+0x10p0"}

	for _, field := range Fields {
		for _, raw := range bad {
			t.Run(fmt.Sprintf("%s=%q", field.Key, raw), func(t *testing.T) {
				values := validValues()
				values[field.Key] = raw

				errs, ok := Validate(values)
				assert.False(t, ok)
				require.Len(t, errs, 1)
				assert.Equal(t, field.Name+" must be greater than 0", errs[field.Key])
			})
		}
	}
}

func TestValidateAcceptsExtremeAndFractionalValues(t *testing.T) {
	accepted := []string{"0.0001", "1e-300", "1e300", " 42 ", "3.14159", "+7"}

	for _, raw := range accepted {
		values := validValues()
		values[KeyBudget] = raw
		errs, ok := Validate(values)
		assert.True(t, ok, "expected %q to be accepted, got %v", raw, errs)
	}
}

func TestValidateReportsEveryFailingField(t *testing.T) {
	errs, ok := Validate(Values{})
	assert.False(t, ok)
	require.Len(t, errs, len(Fields))

	assert.Equal(t, "Protein must be greater than 0", errs[KeyProtein])
	assert.Equal(t, "Carbs must be greater than 0", errs[KeyCarbs])
	assert.Equal(t, "Fats must be greater than 0", errs[KeyFats])
	assert.Equal(t, "Vitamin C must be greater than 0", errs[KeyVitaminC])
	assert.Equal(t, "Calcium must be greater than 0", errs[KeyCalcium])
	assert.Equal(t, "Budget must be greater than 0", errs[KeyBudget])
}

func TestParseCoercesToNumbers(t *testing.T) {
	values := validValues()
	values[KeyFats] = "50.25"

	targets, errs := Parse(values)
	require.Empty(t, errs)
	assert.Equal(t, optimizer.Targets{
		DesiredProtein:  100,
		DesiredCarbs:    200,
		DesiredFats:     50.25,
		DesiredVitaminC: 60,
		DesiredCalcium:  800,
		Budget:          20,
	}, targets)
}

func TestParseInvalidReturnsZeroTargets(t *testing.T) {
	values := validValues()
	values[KeyCalcium] = "0"

	targets, errs := Parse(values)
	assert.Equal(t, optimizer.Targets{}, targets)
	assert.Contains(t, errs, KeyCalcium)
}

func TestFieldPresentation(t *testing.T) {
	labels := make([]string, 0, len(Fields))
	placeholders := make([]string, 0, len(Fields))
	for _, field := range Fields {
		labels = append(labels, field.Label())
		placeholders = append(placeholders, field.Placeholder())
	}

	assert.Equal(t, []string{
		"Protein (g)", "Carbs (g)", "Fats (g)", "Vitamin C (mg)", "Calcium (mg)", "Budget ($)",
	}, labels)
	assert.Equal(t, "Enter vitamin c", placeholders[3])
	assert.Equal(t, "Enter budget", placeholders[5])
}

func TestLookupField(t *testing.T) {
	field, ok := LookupField(KeyVitaminC)
	require.True(t, ok)
	assert.Equal(t, "Vitamin C", field.Name)

	_, ok = LookupField("desiredSugar")
	assert.False(t, ok)
}
