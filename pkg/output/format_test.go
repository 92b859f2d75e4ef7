package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/ingredients"
)

func sampleResult() *optimizer.Result {
	return &optimizer.Result{
		UsedIngredients: []optimizer.UsedIngredient{
			{Name: "Chicken Breast", Quantity: "150"},
			{Name: "Broccoli", Quantity: "80"},
		},
		TotalCost: "12.50",
	}
}

func TestPrettyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyResult(&buf, sampleResult()); err != nil {
		t.Fatalf("PrettyResult() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Optimized Ingredients:",
		"Chicken Breast — 150 grams",
		"Broccoli — 80 grams",
		"Total Cost: $12.50",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyResult output missing %q:\n%s", want, output)
		}
	}
}

func TestCsvResult(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvResult(&buf, sampleResult()); err != nil {
		t.Fatalf("CsvResult() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expected := []string{
		"name,quantity (g)",
		"Chicken Breast,150",
		"Broccoli,80",
		"total cost ($),12.50",
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d: %q", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d = %q, expected %q", i, lines[i], expected[i])
		}
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, constants.OutputFormatJSON, sampleResult()); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if decoded["totalCost"] != "12.50" {
		t.Errorf("expected totalCost 12.50, got %v", decoded["totalCost"])
	}
}

func TestWriteResultUnknownFormat(t *testing.T) {
	if err := WriteResult(&bytes.Buffer{}, "xml", sampleResult()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestPrettyIngredients(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyIngredients(&buf, ingredients.All()); err != nil {
		t.Fatalf("PrettyIngredients() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != ingredients.Count+1 {
		t.Fatalf("expected %d lines, got %d", ingredients.Count+1, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Name") {
		t.Errorf("expected header first, got %q", lines[0])
	}
	if !strings.Contains(buf.String(), "$10.00") {
		t.Errorf("expected almond price rendered as currency")
	}
}

func TestCsvIngredients(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIngredients(&buf, constants.OutputFormatCSV, ingredients.All()); err != nil {
		t.Fatalf("WriteIngredients() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Broccoli,2.8,7,0.3,89.2,47,2\n") {
		t.Errorf("expected broccoli row, got:\n%s", output)
	}
	if !strings.Contains(output, "Cheddar Cheese,25,1.3,33,0,721,6\n") {
		t.Errorf("expected cheddar row, got:\n%s", output)
	}
}

func TestLineHelpers(t *testing.T) {
	if got := IngredientLine(optimizer.UsedIngredient{Name: "Egg", Quantity: "2"}); got != "Egg — 2 grams" {
		t.Errorf("IngredientLine() = %q", got)
	}
	if got := TotalCostLine(&optimizer.Result{TotalCost: "3"}); got != "Total Cost: $3" {
		t.Errorf("TotalCostLine() = %q", got)
	}
}
