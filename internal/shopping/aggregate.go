package shopping

import "mealmate/internal/recipe"

// PerServing divides every amount by servings. Non-positive servings return
// nil since the amounts cannot be normalized.
func PerServing(ingredients []recipe.Ingredient, servings int) []recipe.Ingredient {
	if servings <= 0 {
		return nil
	}
	out := make([]recipe.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, recipe.Ingredient{
			Name:   ing.Name,
			Amount: ing.Amount / float64(servings),
			Unit:   ing.Unit,
		})
	}
	return out
}

// Aggregate groups ingredients by trimmed, lowercased name and sums their
// amounts. The unit of the first occurrence wins; mismatched units are not
// converted. Entries with a blank name are dropped.
func Aggregate(ingredients []recipe.Ingredient) List {
	index := make(map[string]int)
	var items []Item
	for _, ing := range ingredients {
		key := normalizeName(ing.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			items[i].Amount += ing.Amount
			continue
		}
		index[key] = len(items)
		items = append(items, Item{Name: key, Amount: ing.Amount, Unit: ing.Unit})
	}
	return List{Items: items}
}
