package planner

import (
	"fmt"
	"math/rand"
	"testing"

	"mealmate/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(n int) []recipe.Recipe {
	pool := make([]recipe.Recipe, n)
	for i := range pool {
		pool[i] = recipe.Recipe{
			ID:       i + 1,
			Title:    fmt.Sprintf("Recipe %d", i+1),
			Servings: 2,
			Ingredients: []recipe.Ingredient{
				{Name: "rice", Amount: 100, Unit: "g"},
			},
		}
	}
	return pool
}

func assertDailyUnique(t *testing.T, plan WeekPlan) {
	t.Helper()
	for _, d := range plan.Days {
		seen := make(map[int]bool)
		for _, m := range d.Meals {
			require.NotNil(t, m)
			assert.False(t, seen[m.ID], "recipe %d repeated on %s", m.ID, d.Day)
			seen[m.ID] = true
		}
	}
}

func TestGenerate(t *testing.T) {
	t.Run("LargePoolHonoursAllConstraints", func(t *testing.T) {
		for seed := int64(0); seed < 500; seed++ {
			g := NewGenerator(WithRand(rand.New(rand.NewSource(seed))))
			plan, report := g.Generate(makePool(MinStrictPool), nil)

			assert.Len(t, plan.Recipes(), 28)
			for id, count := range plan.Usage() {
				assert.LessOrEqual(t, count, DefaultMaxRepeats, "recipe %d", id)
			}
			assertDailyUnique(t, plan)
			assert.Equal(t, 0, report.Relaxed(Strict.Name))
		}
	})

	t.Run("NineRecipesCannotHonourTheCap", func(t *testing.T) {
		for seed := int64(0); seed < 50; seed++ {
			g := NewGenerator(WithRand(rand.New(rand.NewSource(seed))))
			plan, report := g.Generate(makePool(9), nil)

			assert.Len(t, plan.Recipes(), 28)
			assert.GreaterOrEqual(t, report.ByStrategy[AnyRecipe.Name], 1)
		}
	})

	t.Run("AllergensAreExcluded", func(t *testing.T) {
		pool := makePool(14)
		pool = append(pool, recipe.Recipe{
			ID:          99,
			Title:       "Satay",
			Ingredients: []recipe.Ingredient{{Name: "Peanut Butter", Amount: 2, Unit: "tbsp"}},
		})

		plan := Generate(pool, []string{"peanut"}, WithRand(rand.New(rand.NewSource(7))))
		assert.Zero(t, plan.Usage()[99])
		assert.Len(t, plan.Recipes(), 28)
	})

	t.Run("TwoRecipesStillFillEverySlot", func(t *testing.T) {
		g := NewGenerator(WithRand(rand.New(rand.NewSource(3))))
		plan, report := g.Generate(makePool(2), nil)

		assert.Len(t, plan.Recipes(), 28)
		assert.Equal(t, 0, report.Empty)
		// Capped strategies stop once both recipes reach three placements.
		assert.Equal(t, 6, report.ByStrategy[Strict.Name]+report.ByStrategy[UnderCap.Name])
		assert.Equal(t, 22, report.ByStrategy[AnyRecipe.Name])

		total := 0
		for _, c := range plan.Usage() {
			total += c
		}
		assert.Equal(t, 28, total)
	})

	t.Run("EmptyPoolLeavesSlotsEmpty", func(t *testing.T) {
		plan, report := NewGenerator().Generate(nil, []string{"nuts"})
		assert.Empty(t, plan.Recipes())
		assert.Equal(t, 28, report.Empty)
		assert.Len(t, plan.Meals(), 28)
	})

	t.Run("CapOfOneUsesEachRecipeOnce", func(t *testing.T) {
		plan := Generate(makePool(28), nil, WithMaxRepeats(1), WithRand(rand.New(rand.NewSource(11))))
		usage := plan.Usage()
		assert.Len(t, usage, 28)
		for _, c := range usage {
			assert.Equal(t, 1, c)
		}
	})

	t.Run("StrictOnlyLeavesGaps", func(t *testing.T) {
		g := NewGenerator(WithStrategies(Strict), WithRand(rand.New(rand.NewSource(1))))
		plan, report := g.Generate(makePool(2), nil)
		assert.Len(t, plan.Recipes(), 6)
		assert.Equal(t, 22, report.Empty)
	})

	t.Run("SameSeedSamePlan", func(t *testing.T) {
		pool := makePool(10)
		a := Generate(pool, nil, WithRand(rand.New(rand.NewSource(42))))
		b := Generate(pool, nil, WithRand(rand.New(rand.NewSource(42))))
		assert.Equal(t, a, b)
	})

	t.Run("DoesNotMutateInputs", func(t *testing.T) {
		pool := makePool(5)
		before := make([]recipe.Recipe, len(pool))
		copy(before, pool)
		allergens := []string{"Dairy", "Soy"}

		_ = Generate(pool, allergens, WithRand(rand.New(rand.NewSource(5))))

		assert.Equal(t, before, pool)
		assert.Equal(t, []string{"Dairy", "Soy"}, allergens)
	})
}

func TestStrategies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pool := makePool(3)

	t.Run("StrictSkipsUsedToday", func(t *testing.T) {
		c := Constraints{MaxRepeats: 3, Usage: UsageCounter{}, UsedToday: map[int]bool{1: true, 2: true}}
		r, ok := Strict.Pick(pool, c, rng)
		require.True(t, ok)
		assert.Equal(t, 3, r.ID)
	})

	t.Run("UnderCapIgnoresUsedToday", func(t *testing.T) {
		c := Constraints{MaxRepeats: 3, Usage: UsageCounter{1: 3, 2: 3}, UsedToday: map[int]bool{3: true}}
		_, ok := Strict.Pick(pool, c, rng)
		assert.False(t, ok)

		r, ok := UnderCap.Pick(pool, c, rng)
		require.True(t, ok)
		assert.Equal(t, 3, r.ID)
	})

	t.Run("AnyRecipeOnlyFailsOnEmptyPool", func(t *testing.T) {
		c := Constraints{MaxRepeats: 1, Usage: UsageCounter{1: 5, 2: 5, 3: 5}}
		_, ok := AnyRecipe.Pick(pool, c, rng)
		assert.True(t, ok)

		_, ok = AnyRecipe.Pick(nil, c, rng)
		assert.False(t, ok)
	})
}
