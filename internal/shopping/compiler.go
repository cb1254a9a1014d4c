package shopping

import (
	"context"
	"strings"
	"sync"

	"mealmate/internal/planner"
	"mealmate/internal/recipe"
	"mealmate/internal/shared"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IngredientSource provides the detail the compiler needs for one recipe.
type IngredientSource interface {
	Servings(ctx context.Context, recipeID int) (int, error)
	Ingredients(ctx context.Context, recipeID int) ([]recipe.Ingredient, error)
}

// PriceEstimator prices a list of "amount unit name" lines.
type PriceEstimator interface {
	Price(ctx context.Context, items []string) (Pricing, error)
}

// Compiler derives scaled shopping lists from week plans.
type Compiler struct {
	source      IngredientSource
	pricer      PriceEstimator
	logger      *zap.Logger
	concurrency int
}

// NewCompiler creates a Compiler. pricer may be nil, in which case lists are
// returned without cost or aisles.
func NewCompiler(source IngredientSource, pricer PriceEstimator, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		source:      source,
		pricer:      pricer,
		logger:      logger.Named("shopping"),
		concurrency: 4,
	}
}

type recipeDetail struct {
	servings    int
	ingredients []recipe.Ingredient
}

// Compile fetches ingredients for every filled slot, aggregates them per
// serving and scales the sums to desiredServings. Upstream failures never
// fail compilation: recipes that cannot be fetched are left out and a failed
// pricing call yields zero cost and no aisles.
func (c *Compiler) Compile(ctx context.Context, plan planner.WeekPlan, desiredServings int) (*Result, error) {
	if desiredServings < 1 {
		return nil, shared.NewValidationError("servings must be at least 1, got %d", desiredServings)
	}

	basis := c.Basis(ctx, plan)
	return c.Rescale(ctx, basis, desiredServings)
}

// Basis builds the unscaled aggregation for plan. Each recipe is fetched once
// even when it fills several slots.
func (c *Compiler) Basis(ctx context.Context, plan planner.WeekPlan) Basis {
	placed := plan.Recipes()
	details := c.fetchDetails(ctx, placed)

	var all []recipe.Ingredient
	total := 0
	for _, r := range placed {
		d, ok := details[r.ID]
		if !ok || d.servings <= 0 || len(d.ingredients) == 0 {
			continue
		}
		all = append(all, PerServing(d.ingredients, d.servings)...)
		total += d.servings
	}

	if total < 1 {
		total = 1
	}
	return Basis{PerServing: Aggregate(all), TotalServings: total}
}

// Rescale scales basis to desiredServings and prices the result. It never
// refetches recipes.
func (c *Compiler) Rescale(ctx context.Context, basis Basis, desiredServings int) (*Result, error) {
	if desiredServings < 1 {
		return nil, shared.NewValidationError("servings must be at least 1, got %d", desiredServings)
	}

	list := basis.Scale(desiredServings)
	result := &Result{
		Servings: desiredServings,
		List:     list,
		Aisles:   []Aisle{},
		Basis:    basis,
	}

	if c.pricer == nil || list.Len() == 0 {
		return result, nil
	}

	pricing, err := c.pricer.Price(ctx, PriceLines(list))
	if err != nil {
		c.logger.Warn("failed to price shopping list", zap.Error(err), zap.Int("items", list.Len()))
		return result, nil
	}
	result.TotalCost = round2(pricing.TotalCost)
	if pricing.Aisles != nil {
		result.Aisles = pricing.Aisles
	}
	return result, nil
}

func (c *Compiler) fetchDetails(ctx context.Context, placed []recipe.Recipe) map[int]recipeDetail {
	ids := make([]int, 0, len(placed))
	seen := make(map[int]bool)
	for _, r := range placed {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}

	var mu sync.Mutex
	details := make(map[int]recipeDetail, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			servings, err := c.source.Servings(gctx, id)
			if err != nil {
				c.logger.Warn("skipping recipe without servings", zap.Int("recipe_id", id), zap.Error(err))
				return nil
			}
			ings, err := c.source.Ingredients(gctx, id)
			if err != nil {
				c.logger.Warn("skipping recipe without ingredients", zap.Int("recipe_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			details[id] = recipeDetail{servings: servings, ingredients: ings}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return details
}

// PriceLines formats list items as "amount unit name" for the pricing service.
func PriceLines(l List) []string {
	lines := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		parts := []string{formatAmount(it.Amount)}
		if it.Unit != "" {
			parts = append(parts, it.Unit)
		}
		parts = append(parts, it.Name)
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
