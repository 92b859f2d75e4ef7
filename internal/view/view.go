// Package view renders the web UI as templ components. The markup lives in
// the .templ files; run `templ generate` after editing them.
package view

import (
	"github.com/a-h/templ"
	"github.com/iwvelando/ingredient-optimizer/internal/form"
	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/pkg/ingredients"
	"github.com/iwvelando/ingredient-optimizer/pkg/output"
)

// Tab selects the visible panel of the page.
type Tab string

const (
	TabOptimizer   Tab = "optimizer"
	TabIngredients Tab = "ingredients"
)

// ParseTab maps a query value to a Tab, defaulting to the optimizer.
func ParseTab(value string) Tab {
	if Tab(value) == TabIngredients {
		return TabIngredients
	}
	return TabOptimizer
}

// PageData is everything the full page needs.
type PageData struct {
	Tab         Tab
	Version     string
	State       form.State
	Ingredients []ingredients.Ingredient
}

// Page renders the complete document.
func Page(data PageData) templ.Component {
	if data.Ingredients == nil {
		data.Ingredients = ingredients.All()
	}
	if data.Tab == "" {
		data.Tab = TabOptimizer
	}
	return page(data)
}

type fieldView struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
	Error       string
}

func fieldViews(state form.State) []fieldView {
	fields := make([]fieldView, 0, len(form.Fields))
	for _, field := range form.Fields {
		fields = append(fields, fieldView{
			Key:         field.Key,
			Label:       field.Label(),
			Placeholder: field.Placeholder(),
			Value:       state.Values[field.Key],
			Error:       state.Errors[field.Key],
		})
	}
	return fields
}

func resultLines(result *optimizer.Result) []string {
	lines := make([]string, 0, len(result.UsedIngredients))
	for _, item := range result.UsedIngredients {
		lines = append(lines, output.IngredientLine(item))
	}
	return lines
}
