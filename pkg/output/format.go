// Package output provides utilities for formatting optimization results and the
// reference ingredient table for the command line.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/format"
	"github.com/iwvelando/ingredient-optimizer/pkg/ingredients"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IngredientLine is the display form of one used ingredient.
func IngredientLine(item optimizer.UsedIngredient) string {
	return fmt.Sprintf("%s — %s grams", item.Name, item.Quantity)
}

// TotalCostLine is the display form of the total cost.
func TotalCostLine(result *optimizer.Result) string {
	return fmt.Sprintf("Total Cost: $%s", result.TotalCost)
}

// WriteResult renders result in the requested output format.
func WriteResult(w io.Writer, outputFormat string, result *optimizer.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyResult(w, result)
	case constants.OutputFormatCSV:
		return CsvResult(w, result)
	case constants.OutputFormatJSON:
		return writeJSON(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// WriteIngredients renders the reference table in the requested output format.
func WriteIngredients(w io.Writer, outputFormat string, items []ingredients.Ingredient) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyIngredients(w, items)
	case constants.OutputFormatCSV:
		return CsvIngredients(w, items)
	case constants.OutputFormatJSON:
		return writeJSON(w, items)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyResult outputs a human-readable rather than machine-readable result.
func PrettyResult(w io.Writer, result *optimizer.Result) error {
	if _, err := fmt.Fprintln(w, "Optimized Ingredients:"); err != nil {
		return err
	}
	for _, item := range result.UsedIngredients {
		if _, err := fmt.Fprintln(w, "  "+IngredientLine(item)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, TotalCostLine(result))
	return err
}

// CsvResult outputs one row per ingredient followed by a total row.
func CsvResult(w io.Writer, result *optimizer.Result) error {
	writer := csv.NewWriter(w)
	records := [][]string{{"name", "quantity (g)"}}
	for _, item := range result.UsedIngredients {
		records = append(records, []string{item.Name, item.Quantity.String()})
	}
	records = append(records, []string{"total cost ($)", result.TotalCost.String()})
	return writer.WriteAll(records)
}

// PrettyIngredients outputs the reference table with aligned columns.
func PrettyIngredients(w io.Writer, items []ingredients.Ingredient) error {
	p := message.NewPrinter(language.English)
	if _, err := fmt.Fprintf(w, "%-16s | %-11s | %-9s | %-7s | %-14s | %-12s | %s\n",
		"Name", "Protein (g)", "Carbs (g)", "Fat (g)", "Vitamin C (mg)", "Calcium (mg)", "Price ($)"); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := p.Fprintf(w, "%-16s | %-11v | %-9v | %-7v | %-14v | %-12v | %s\n",
			item.Name, item.Protein, item.Carbs, item.Fat,
			item.Micros.VitaminC, item.Micros.Calcium, format.Currency(item.Price)); err != nil {
			return err
		}
	}
	return nil
}

// CsvIngredients outputs the reference table in comma-separated value format.
func CsvIngredients(w io.Writer, items []ingredients.Ingredient) error {
	writer := csv.NewWriter(w)
	records := [][]string{{"name", "protein (g)", "carbs (g)", "fat (g)", "vitamin c (mg)", "calcium (mg)", "price ($)"}}
	for _, item := range items {
		records = append(records, []string{
			item.Name,
			format.Number(item.Protein),
			format.Number(item.Carbs),
			format.Number(item.Fat),
			format.Number(item.Micros.VitaminC),
			format.Number(item.Micros.Calcium),
			format.Number(item.Price),
		})
	}
	return writer.WriteAll(records)
}

func writeJSON(w io.Writer, payload interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
