package planner

import (
	"context"
	"strings"
	"time"

	"mealmate/internal/advisor"
	"mealmate/internal/recipe"
	"mealmate/internal/shared"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	poolSize       = 150
	randomPoolSize = 100
)

// RecipeSearcher finds candidate recipes.
type RecipeSearcher interface {
	Search(ctx context.Context, q recipe.Query) ([]recipe.Recipe, error)
}

// MoodAnalyzer turns free text into a mood annotation.
type MoodAnalyzer interface {
	Analyze(ctx context.Context, text string) advisor.Mood
}

// Request is everything the user provides to plan a week.
type Request struct {
	advisor.Profile
	MoodText    string   `json:"mood_text" validate:"max=500"`
	Ingredients []string `json:"ingredients" validate:"dive,required"`
	Allergens   []string `json:"allergens" validate:"dive,required"`
	Cuisines    []string `json:"cuisines"`
	MinCalories int      `json:"min_calories" validate:"gte=0"`
	MaxCalories int      `json:"max_calories" validate:"omitempty,gtefield=MinCalories"`
}

// Result is a generated plan with its annotations.
type Result struct {
	Plan         WeekPlan     `json:"plan"`
	CaloricNeeds float64      `json:"caloric_needs"`
	Mood         advisor.Mood `json:"mood"`
}

// Service plans a week: it validates the request, annotates it and fills
// the plan from a searched recipe pool.
type Service struct {
	searcher RecipeSearcher
	mood     MoodAnalyzer
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	opts     []Option
}

// NewService creates a planning service. opts are passed to every Generator.
func NewService(searcher RecipeSearcher, mood MoodAnalyzer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		searcher: searcher,
		mood:     mood,
		validate: validator.New(),
		logger:   logger.Named("planner"),
		now:      time.Now,
		opts:     opts,
	}
}

// Plan generates the weekly plan for req.
func (s *Service) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	calories := advisor.Calories(req.Profile)
	mood := advisor.Mood{Label: advisor.Neutral}
	if s.mood != nil && strings.TrimSpace(req.MoodText) != "" {
		mood = s.mood.Analyze(ctx, req.MoodText)
	}

	pool := s.fetchPool(ctx, req)
	if len(pool) == 0 {
		s.logger.Warn("no recipes available, plan will be empty")
	}

	opts := append([]Option{WithWeekStart(GetNextMonday(s.now()))}, s.opts...)
	plan, report := NewGenerator(opts...).Generate(pool, req.Allergens)
	s.logger.Info("plan generated",
		zap.Int("pool_size", len(pool)),
		zap.Int("relaxed_slots", report.Relaxed(Strict.Name)),
		zap.Int("empty_slots", report.Empty),
		zap.String("mood", mood.Label),
	)

	return &Result{Plan: plan, CaloricNeeds: calories, Mood: mood}, nil
}

// Validate checks a request without planning it.
func (s *Service) Validate(req Request) error {
	if err := s.validate.Struct(req); err != nil {
		return shared.NewValidationError("invalid plan request: %s", describe(err))
	}
	return nil
}

// fetchPool runs the search, dropping one constraint at a time until it
// returns recipes. Upstream errors count as an empty result.
func (s *Service) fetchPool(ctx context.Context, req Request) []recipe.Recipe {
	q := recipe.Query{
		IncludeIngredients: req.Ingredients,
		ExcludeIngredients: req.Allergens,
		Cuisines:           req.Cuisines,
		MinCalories:        req.MinCalories,
		MaxCalories:        req.MaxCalories,
		Number:             poolSize,
	}

	steps := []struct {
		name  string
		relax func(*recipe.Query)
	}{
		{"full", func(*recipe.Query) {}},
		{"without_ingredients", func(q *recipe.Query) { q.IncludeIngredients = nil }},
		{"without_cuisine", func(q *recipe.Query) { q.Cuisines = nil }},
		{"without_calories", func(q *recipe.Query) { q.MinCalories, q.MaxCalories = 0, 0 }},
		{"random", func(q *recipe.Query) { *q = recipe.Query{Number: randomPoolSize} }},
	}

	for _, step := range steps {
		step.relax(&q)
		recipes, err := s.searcher.Search(ctx, q)
		if err != nil {
			s.logger.Warn("recipe search failed", zap.String("step", step.name), zap.Error(err))
			continue
		}
		if len(recipes) > 0 {
			s.logger.Debug("recipe pool fetched", zap.String("step", step.name), zap.Int("count", len(recipes)))
			return recipes
		}
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
