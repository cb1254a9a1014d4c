package planner

import (
	"math/rand"

	"mealmate/internal/recipe"
)

// UsageCounter tracks how many times each recipe id has been placed in the
// plan being built.
type UsageCounter map[int]int

// Count returns the placements of id so far.
func (u UsageCounter) Count(id int) int {
	return u[id]
}

// Inc records one more placement of id.
func (u UsageCounter) Inc(id int) {
	u[id]++
}

// Constraints is the view of the plan a strategy needs to choose one slot.
type Constraints struct {
	MaxRepeats int
	Allergens  []string
	Usage      UsageCounter
	UsedToday  map[int]bool
}

func (c Constraints) underCap(r recipe.Recipe) bool {
	return c.Usage.Count(r.ID) < c.MaxRepeats
}

// Strategy picks a recipe for one slot from the pool, or reports false when
// it has nothing to offer. Strategies must not modify pool or the
// constraints.
type Strategy struct {
	Name string
	Pick func(pool []recipe.Recipe, c Constraints, rng *rand.Rand) (recipe.Recipe, bool)
}

// Strict honours the repetition cap, daily uniqueness and the allergen list.
var Strict = Strategy{
	Name: "strict",
	Pick: func(pool []recipe.Recipe, c Constraints, rng *rand.Rand) (recipe.Recipe, bool) {
		eligible := filter(pool, func(r recipe.Recipe) bool {
			return c.underCap(r) && !c.UsedToday[r.ID] && !r.HasAllergen(c.Allergens)
		})
		if len(eligible) == 0 {
			return recipe.Recipe{}, false
		}
		rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
		for _, r := range eligible {
			if c.underCap(r) {
				return r, true
			}
		}
		return eligible[0], true
	},
}

// UnderCap drops daily uniqueness and the allergen check but keeps the
// repetition cap.
var UnderCap = Strategy{
	Name: "under_cap",
	Pick: func(pool []recipe.Recipe, c Constraints, rng *rand.Rand) (recipe.Recipe, bool) {
		eligible := filter(pool, c.underCap)
		if len(eligible) == 0 {
			return recipe.Recipe{}, false
		}
		return eligible[rng.Intn(len(eligible))], true
	},
}

// AnyRecipe picks uniformly from the whole pool. It can break every
// guarantee and only fails on an empty pool.
var AnyRecipe = Strategy{
	Name: "any",
	Pick: func(pool []recipe.Recipe, _ Constraints, rng *rand.Rand) (recipe.Recipe, bool) {
		if len(pool) == 0 {
			return recipe.Recipe{}, false
		}
		return pool[rng.Intn(len(pool))], true
	},
}

// DefaultStrategies is the relaxation order used by Generate.
func DefaultStrategies() []Strategy {
	return []Strategy{Strict, UnderCap, AnyRecipe}
}

func filter(pool []recipe.Recipe, keep func(recipe.Recipe) bool) []recipe.Recipe {
	var out []recipe.Recipe
	for _, r := range pool {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
