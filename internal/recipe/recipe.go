package recipe

import (
	"fmt"
	"strings"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Recipe represents a recipe as returned by the recipe search service.
// It is treated as immutable once fetched.
type Recipe struct {
	ID              int                `json:"id"`
	Title           string             `json:"title"`
	Image           string             `json:"image,omitempty"`
	SourceURL       string             `json:"source_url,omitempty"`
	Servings        int                `json:"servings"`
	ReadyInMinutes  int                `json:"ready_in_minutes,omitempty"`
	Ingredients     []Ingredient       `json:"ingredients,omitempty"`
	Nutrients       map[string]float64 `json:"nutrients,omitempty"`
	PricePerServing *float64           `json:"price_per_serving,omitempty"`
}

// Detail is the full view of a single recipe.
type Detail struct {
	Recipe
	Instructions    string   `json:"instructions"`
	IngredientLines []string `json:"ingredient_lines"`
}

// Query describes a recipe search.
type Query struct {
	Text               string
	IncludeIngredients []string
	ExcludeIngredients []string
	Cuisines           []string
	MinCalories        int
	MaxCalories        int
	Number             int
}

// HasAllergen reports whether any ingredient name contains one of the
// allergens, ignoring case.
func (r Recipe) HasAllergen(allergens []string) bool {
	for _, allergen := range allergens {
		a := strings.ToLower(strings.TrimSpace(allergen))
		if a == "" {
			continue
		}
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing.Name), a) {
				return true
			}
		}
	}
	return false
}

// Calories returns the "Calories" nutrient, if present.
func (r Recipe) Calories() (float64, bool) {
	v, ok := r.Nutrients["Calories"]
	return v, ok
}

// PageURL is the public recipe page on spoonacular.com.
func (r Recipe) PageURL() string {
	return fmt.Sprintf("https://spoonacular.com/recipes/%s-%d", strings.ReplaceAll(r.Title, " ", "-"), r.ID)
}

// PriceDollars converts the per-serving price (reported in cents) to dollars.
func (r Recipe) PriceDollars() (float64, bool) {
	if r.PricePerServing == nil {
		return 0, false
	}
	return *r.PricePerServing / 100, true
}
