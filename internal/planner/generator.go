package planner

import (
	"math/rand"
	"time"

	"mealmate/internal/recipe"
)

// DefaultMaxRepeats caps how often one recipe may appear in a week.
const DefaultMaxRepeats = 3

// MinStrictPool is the smallest allergen-free pool for which the strict
// strategy always fills the week under DefaultMaxRepeats. Before the last
// dinner at most 9 recipes are exhausted and 3 were used that day.
const MinStrictPool = 13

// Generator fills the 28 slots of a WeekPlan from a candidate pool.
type Generator struct {
	maxRepeats int
	rng        *rand.Rand
	strategies []Strategy
	weekStart  time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxRepeats overrides the repetition cap. Values below 1 are ignored.
func WithMaxRepeats(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxRepeats = n
		}
	}
}

// WithRand injects the randomness source, mainly for tests.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithStrategies replaces the relaxation order.
func WithStrategies(s ...Strategy) Option {
	return func(g *Generator) {
		g.strategies = s
	}
}

// WithWeekStart stamps the plan with the Monday it starts on.
func WithWeekStart(t time.Time) Option {
	return func(g *Generator) {
		g.weekStart = t
	}
}

// NewGenerator creates a Generator with the default cap and strategies.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		maxRepeats: DefaultMaxRepeats,
		strategies: DefaultStrategies(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// Report tells how each slot was filled, keyed by strategy name. Slots that
// no strategy could fill are counted in Empty.
type Report struct {
	ByStrategy map[string]int
	Empty      int
}

// Relaxed is the number of slots filled by a strategy other than the first.
func (r Report) Relaxed(first string) int {
	n := 0
	for name, count := range r.ByStrategy {
		if name != first {
			n += count
		}
	}
	return n
}

// Generate builds a plan. It never fails: a slot stays empty only when every
// strategy declines, which with the default strategies means an empty pool.
func (g *Generator) Generate(pool []recipe.Recipe, allergens []string) (WeekPlan, Report) {
	plan := NewWeekPlan(g.weekStart)
	report := Report{ByStrategy: make(map[string]int)}
	usage := make(UsageCounter)

	for i := range plan.Days {
		usedToday := make(map[int]bool)
		for j := range Slots {
			c := Constraints{
				MaxRepeats: g.maxRepeats,
				Allergens:  allergens,
				Usage:      usage,
				UsedToday:  usedToday,
			}

			chosen, name, ok := g.pick(pool, c)
			if !ok {
				report.Empty++
				continue
			}

			placed := chosen
			plan.Days[i].Meals[j] = &placed
			usage.Inc(chosen.ID)
			usedToday[chosen.ID] = true
			report.ByStrategy[name]++
		}
	}

	return plan, report
}

func (g *Generator) pick(pool []recipe.Recipe, c Constraints) (recipe.Recipe, string, bool) {
	for _, s := range g.strategies {
		if r, ok := s.Pick(pool, c, g.rng); ok {
			return r, s.Name, true
		}
	}
	return recipe.Recipe{}, "", false
}

// Generate is a convenience wrapper around NewGenerator(opts...).Generate.
func Generate(pool []recipe.Recipe, allergens []string, opts ...Option) WeekPlan {
	plan, _ := NewGenerator(opts...).Generate(pool, allergens)
	return plan
}
