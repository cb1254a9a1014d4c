package companion

import (
	"context"
	"errors"

	"mealmate/internal/shared"
	"mealmate/internal/shopping"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxGroceryRecipes bounds how many recipes one grocery list can combine.
const MaxGroceryRecipes = 10

// Grocery is a grocery list together with the basis it was scaled from.
type Grocery struct {
	Basis shopping.GroceryBasis `json:"basis"`
	List  shopping.GroceryList  `json:"list"`
}

// Grocery builds the grocery list of the picked recipes. desired == 0 means
// the recipes' own combined serving count.
func (s *Service) Grocery(ctx context.Context, recipeIDs []int, desired int) (*Grocery, error) {
	if len(recipeIDs) == 0 {
		return nil, shared.NewValidationError("at least one recipe must be selected")
	}
	if len(recipeIDs) > MaxGroceryRecipes {
		return nil, shared.NewValidationError("at most %d recipes can be combined, got %d", MaxGroceryRecipes, len(recipeIDs))
	}
	if desired < 0 {
		return nil, shared.NewValidationError("servings must be at least 1, got %d", desired)
	}

	type fetched struct {
		lines    []string
		servings int
		ok       bool
	}
	results := make([]fetched, len(recipeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range recipeIDs {
		g.Go(func() error {
			d, err := s.recipes.Information(gctx, id)
			if err != nil {
				s.logger.Warn("failed to fetch recipe for grocery list", zap.Int("recipe_id", id), zap.Error(err))
				return nil
			}
			servings := d.Servings
			if servings < 1 {
				servings = 1
			}
			results[i] = fetched{lines: d.IngredientLines, servings: servings, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	var lines []string
	total, found := 0, 0
	for _, r := range results {
		if !r.ok {
			continue
		}
		found++
		total += r.servings
		lines = append(lines, r.lines...)
	}
	if found == 0 {
		return nil, shared.NewUpstreamError("spoonacular", errors.New("no selected recipe could be fetched"))
	}

	basis := shopping.NewGroceryBasis(lines, total)
	if desired == 0 {
		desired = basis.TotalServings
	}
	s.logger.Debug("grocery list built",
		zap.Int("recipes", found),
		zap.Int("total_servings", total),
		zap.Int("unparsed", len(basis.Unparsed)),
	)
	return &Grocery{Basis: basis, List: basis.Scale(desired)}, nil
}

// RescaleGrocery rescales a stored basis without refetching recipes.
func RescaleGrocery(basis shopping.GroceryBasis, desired int) (*Grocery, error) {
	if desired < 1 {
		return nil, shared.NewValidationError("servings must be at least 1, got %d", desired)
	}
	return &Grocery{Basis: basis, List: basis.Scale(desired)}, nil
}
