package optimizer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Targets is the body POSTed to the optimizer service. The JSON keys are part of
// the service contract and must not change.
type Targets struct {
	DesiredProtein  float64 `json:"desiredProtein"`
	DesiredCarbs    float64 `json:"desiredCarbs"`
	DesiredFats     float64 `json:"desiredFats"`
	DesiredVitaminC float64 `json:"desiredVitaminC"`
	DesiredCalcium  float64 `json:"desiredCalcium"`
	Budget          float64 `json:"budget"`
}

// Result is a successful optimizer response.
type Result struct {
	UsedIngredients []UsedIngredient `json:"usedIngredients"`
	TotalCost       Text             `json:"totalCost"`
}

// UsedIngredient is one line of the optimized mix.
type UsedIngredient struct {
	Name     string `json:"name"`
	Quantity Text   `json:"quantity"`
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	clone := &Result{TotalCost: r.TotalCost}
	clone.UsedIngredients = append([]UsedIngredient{}, r.UsedIngredients...)
	return clone
}

// Text is opaque display text. The service documents quantities and costs as
// strings; numbers are accepted too and kept as their literal JSON text.
type Text string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*t = Text(n.String())
	return nil
}

// String returns the text as-is.
func (t Text) String() string {
	return string(t)
}

// errorBody is the documented shape of a non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}
