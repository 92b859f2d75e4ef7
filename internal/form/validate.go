// Package form holds the optimizer form: its six nutrient fields, the validation
// rule applied on every submission, and the per-user state (values, errors,
// loading flag, last result and notification) that the UI renders.
package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
)

// Field keys. These double as the JSON keys sent to the optimizer service and
// as the HTML input names.
const (
	KeyProtein  = "desiredProtein"
	KeyCarbs    = "desiredCarbs"
	KeyFats     = "desiredFats"
	KeyVitaminC = "desiredVitaminC"
	KeyCalcium  = "desiredCalcium"
	KeyBudget   = "budget"
)

// Field describes one input of the form.
type Field struct {
	Key  string
	Name string
	Unit string
}

// Label is the text shown above the input, e.g. "Vitamin C (mg)".
func (f Field) Label() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Unit)
}

// Placeholder is the hint shown in an empty input.
func (f Field) Placeholder() string {
	return "Enter " + strings.ToLower(f.Name)
}

// Fields lists the form inputs in display order.
var Fields = []Field{
	{Key: KeyProtein, Name: "Protein", Unit: "g"},
	{Key: KeyCarbs, Name: "Carbs", Unit: "g"},
	{Key: KeyFats, Name: "Fats", Unit: "g"},
	{Key: KeyVitaminC, Name: "Vitamin C", Unit: "mg"},
	{Key: KeyCalcium, Name: "Calcium", Unit: "mg"},
	{Key: KeyBudget, Name: "Budget", Unit: "$"},
}

// LookupField returns the field with the given key.
func LookupField(key string) (Field, bool) {
	for _, field := range Fields {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Values maps field keys to the raw text the user entered.
type Values map[string]string

// Errors maps field keys to a validation message. Absent keys are valid.
type Errors map[string]string

func (v Values) clone() Values {
	out := make(Values, len(Fields))
	for _, field := range Fields {
		out[field.Key] = v[field.Key]
	}
	return out
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, msg := range e {
		out[k] = msg
	}
	return out
}

// parsePositive returns the value of raw when it is a finite decimal number
// strictly greater than zero. Unparseable text, including hexadecimal floats,
// counts as non-positive.
func parsePositive(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.ContainsAny(trimmed, "xX") {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, value > 0
}

// Validate checks every field and returns the complete error mapping, which
// always replaces any earlier one. ok is true when no field failed.
func Validate(values Values) (errs Errors, ok bool) {
	errs = make(Errors)
	for _, field := range Fields {
		if _, valid := parsePositive(values[field.Key]); !valid {
			errs[field.Key] = fmt.Sprintf("%s must be greater than 0", field.Name)
		}
	}
	return errs, len(errs) == 0
}

// Parse validates values and converts them into the optimizer request. The
// targets are only meaningful when errs is empty.
func Parse(values Values) (optimizer.Targets, Errors) {
	errs, ok := Validate(values)
	if !ok {
		return optimizer.Targets{}, errs
	}

	number := func(key string) float64 {
		v, _ := parsePositive(values[key])
		return v
	}
	return optimizer.Targets{
		DesiredProtein:  number(KeyProtein),
		DesiredCarbs:    number(KeyCarbs),
		DesiredFats:     number(KeyFats),
		DesiredVitaminC: number(KeyVitaminC),
		DesiredCalcium:  number(KeyCalcium),
		Budget:          number(KeyBudget),
	}, errs
}
