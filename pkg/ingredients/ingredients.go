// Package ingredients holds the fixed reference table of known ingredients and
// their nutritional profiles. The table is display-only: it is never sent to the
// optimizer service and nothing returned by the service modifies it.
package ingredients

// Count is the number of reference ingredients.
const Count = 14

// Micros holds micronutrient content in milligrams.
type Micros struct {
	VitaminC float64 `json:"vitaminC"`
	Calcium  float64 `json:"calcium"`
}

// Ingredient is one reference row. Macros are grams, price is dollars.
type Ingredient struct {
	Name    string  `json:"name"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Price   float64 `json:"price"`
	Micros  Micros  `json:"micros"`
}

var reference = [Count]Ingredient{
	{Name: "Chicken Breast", Protein: 31, Carbs: 0, Fat: 3.6, Price: 5, Micros: Micros{VitaminC: 0, Calcium: 0}},
	{Name: "Broccoli", Protein: 2.8, Carbs: 7, Fat: 0.3, Price: 2, Micros: Micros{VitaminC: 89.2, Calcium: 47}},
	{Name: "Almonds", Protein: 21, Carbs: 22, Fat: 50, Price: 10, Micros: Micros{VitaminC: 0, Calcium: 264}},
	{Name: "Oats", Protein: 13, Carbs: 68, Fat: 6, Price: 1.5, Micros: Micros{VitaminC: 0, Calcium: 54}},
	{Name: "Salmon", Protein: 25, Carbs: 0, Fat: 13, Price: 8, Micros: Micros{VitaminC: 0, Calcium: 9}},
	{Name: "Egg", Protein: 13, Carbs: 1.1, Fat: 10, Price: 3, Micros: Micros{VitaminC: 0, Calcium: 56}},
	{Name: "Spinach", Protein: 2.9, Carbs: 3.6, Fat: 0.4, Price: 2, Micros: Micros{VitaminC: 28, Calcium: 99}},
	{Name: "Quinoa", Protein: 14, Carbs: 64, Fat: 6, Price: 4, Micros: Micros{VitaminC: 0, Calcium: 47}},
	{Name: "Greek Yogurt", Protein: 10, Carbs: 3.6, Fat: 0.4, Price: 4, Micros: Micros{VitaminC: 0, Calcium: 110}},
	{Name: "Tofu", Protein: 8, Carbs: 2, Fat: 4.8, Price: 2.5, Micros: Micros{VitaminC: 0, Calcium: 350}},
	{Name: "Avocado", Protein: 2, Carbs: 9, Fat: 15, Price: 3.5, Micros: Micros{VitaminC: 10, Calcium: 12}},
	{Name: "Sweet Potato", Protein: 1.6, Carbs: 20, Fat: 0.1, Price: 1.8, Micros: Micros{VitaminC: 2.4, Calcium: 30}},
	{Name: "Lentils", Protein: 9, Carbs: 20, Fat: 0.4, Price: 1.2, Micros: Micros{VitaminC: 0, Calcium: 19}},
	{Name: "Cheddar Cheese", Protein: 25, Carbs: 1.3, Fat: 33, Price: 6, Micros: Micros{VitaminC: 0, Calcium: 721}},
}

// All returns a copy of the reference table in display order.
func All() []Ingredient {
	out := make([]Ingredient, Count)
	copy(out, reference[:])
	return out
}

// Find returns the reference ingredient with the given name.
func Find(name string) (Ingredient, bool) {
	for _, ingredient := range reference {
		if ingredient.Name == name {
			return ingredient, true
		}
	}
	return Ingredient{}, false
}
