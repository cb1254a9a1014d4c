package companion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"mealmate/internal/llm"
	"mealmate/internal/recipe"
	"mealmate/internal/shared"
	"mealmate/internal/shopping"
	"mealmate/internal/tmdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	content string
	err     error

	mu      sync.Mutex
	prompts []string
}

func (s *stubLLM) GenerateContent(_ context.Context, prompt string, _ ...llm.Option) (llm.ContentResponse, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return llm.ContentResponse{Content: s.content}, s.err
}

type stubRecipes struct {
	mu      sync.Mutex
	queries []recipe.Query
	results map[string][]recipe.Recipe
	details map[int]*recipe.Detail
}

func (s *stubRecipes) Search(_ context.Context, q recipe.Query) ([]recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.results[q.Text], nil
}

func (s *stubRecipes) Information(_ context.Context, id int) (*recipe.Detail, error) {
	d, ok := s.details[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

type stubMedia struct {
	recs []tmdb.Recommendation
	err  error
}

func (s stubMedia) Search(context.Context, string) ([]tmdb.SearchResult, error) { return nil, nil }
func (s stubMedia) Details(context.Context, string, int) (*tmdb.Media, error)  { return nil, nil }
func (s stubMedia) Recommendations(context.Context, string, int) ([]tmdb.Recommendation, error) {
	return s.recs, s.err
}

func TestPairings(t *testing.T) {
	horror := &tmdb.Media{Title: "The Shining", Genres: []string{"Horror"}, Overview: "A hotel."}

	t.Run("UsesModelQuery", func(t *testing.T) {
		gen := &stubLLM{content: `"spooky red velvet cake"`}
		recipes := &stubRecipes{results: map[string][]recipe.Recipe{
			"spooky red velvet cake": {{ID: 1, Title: "Red Velvet", Image: "rv.jpg"}},
		}}
		svc := NewService(stubMedia{}, recipes, gen, nil)

		p, err := svc.Pairings(context.Background(), horror, "Dessert")
		require.NoError(t, err)
		assert.Equal(t, "dessert", p.FoodType)
		assert.Equal(t, "spooky red velvet cake", p.Query)
		assert.Equal(t, []RecipeOption{{ID: 1, Title: "Red Velvet", Image: "rv.jpg"}}, p.Recipes)
		assert.Equal(t, 4, recipes.queries[0].Number)
		assert.Contains(t, gen.prompts[0], "Genre: Horror")
		assert.Contains(t, gen.prompts[0], "Food type needed: dessert")
	})

	t.Run("ShortAnswerUsesGenreTable", func(t *testing.T) {
		gen := &stubLLM{content: "cake"}
		recipes := &stubRecipes{}
		svc := NewService(stubMedia{}, recipes, gen, nil)

		p, err := svc.Pairings(context.Background(), &tmdb.Media{Title: "Up", Genres: []string{"Family"}}, FoodSnack)
		require.NoError(t, err)
		assert.Equal(t, "crowd-pleasing snack", recipes.queries[0].Text)
		assert.Equal(t, "snack recipe", p.Query, "empty result retries with the generic query")
		assert.Empty(t, p.Recipes)
	})

	t.Run("ModelErrorUsesCuisineKeyword", func(t *testing.T) {
		gen := &stubLLM{err: errors.New("down")}
		recipes := &stubRecipes{results: map[string][]recipe.Recipe{
			"korean main course": {{ID: 2, Title: "Bibimbap"}},
		}}
		svc := NewService(stubMedia{}, recipes, gen, nil)

		p, err := svc.Pairings(context.Background(), &tmdb.Media{Title: "My Korean Summer", Genres: []string{"Drama"}}, FoodMainCourse)
		require.NoError(t, err)
		assert.Equal(t, "korean main course", p.Query)
		assert.Len(t, p.Recipes, 1)
	})

	t.Run("ModelErrorUsesShortGenreTable", func(t *testing.T) {
		gen := &stubLLM{err: errors.New("down")}
		recipes := &stubRecipes{results: map[string][]recipe.Recipe{
			"Family snack": {{ID: 3}},
		}}
		svc := NewService(stubMedia{}, recipes, gen, nil)

		p, err := svc.Pairings(context.Background(), &tmdb.Media{Title: "Up", Genres: []string{"Family"}}, FoodSnack)
		require.NoError(t, err)
		assert.Equal(t, "Family snack", p.Query)
	})

	t.Run("NoGenreDefaultsToComedy", func(t *testing.T) {
		gen := &stubLLM{err: errors.New("down")}
		recipes := &stubRecipes{results: map[string][]recipe.Recipe{"fun party dessert": {{ID: 4}}}}
		svc := NewService(stubMedia{}, recipes, gen, nil)

		p, err := svc.Pairings(context.Background(), &tmdb.Media{Title: "Untitled"}, FoodDessert)
		require.NoError(t, err)
		assert.Equal(t, "fun party dessert", p.Query)
	})

	t.Run("RejectsUnknownFoodType", func(t *testing.T) {
		svc := NewService(stubMedia{}, &stubRecipes{}, &stubLLM{}, nil)
		_, err := svc.Pairings(context.Background(), horror, "brunch")
		assert.True(t, shared.IsValidation(err))
	})
}

func TestAllPairings(t *testing.T) {
	gen := &stubLLM{content: "cozy themed food"}
	recipes := &stubRecipes{results: map[string][]recipe.Recipe{"cozy themed food": {{ID: 9}}}}
	svc := NewService(stubMedia{}, recipes, gen, nil)

	all, err := svc.AllPairings(context.Background(), &tmdb.Media{Title: "Amelie"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, ft := range FoodTypes {
		assert.Equal(t, ft, all[i].FoodType)
	}
}

func TestDishRecommendation(t *testing.T) {
	got := DishRecommendation(&tmdb.Media{Title: "Heat", Genres: []string{"Action", "Crime"}})
	assert.Equal(t, "Based on 'Heat', For action movies, we recommend hearty, protein-rich foods like steak, burgers, or loaded nachos that will fuel your adrenaline! Consider pairing with themed drinks that match the movie's mood!", got)

	got = DishRecommendation(&tmdb.Media{Title: "Quiet"})
	assert.Contains(t, got, "sophisticated comfort foods")

	got = DishRecommendation(&tmdb.Media{Title: "Musical", Genres: []string{"Music"}})
	assert.Contains(t, got, "international cuisines")
}

func TestChat(t *testing.T) {
	media := &tmdb.Media{
		Title:     "Inception",
		Overview:  "Dreams within dreams.",
		Genres:    []string{"Action", "Science Fiction"},
		TopCast:   []string{"Leonardo DiCaprio as Cobb"},
		Directors: []string{"Christopher Nolan"},
	}

	t.Run("Answer", func(t *testing.T) {
		gen := &stubLLM{content: " It was filmed in six countries. "}
		svc := NewService(stubMedia{}, &stubRecipes{}, gen, nil)

		reply, err := svc.Chat(context.Background(), media, "Where was it filmed?")
		require.NoError(t, err)
		assert.Equal(t, "It was filmed in six countries.", reply.Answer)
		assert.False(t, reply.Degraded)

		prompt := gen.prompts[0]
		assert.Contains(t, prompt, "Genre: Action, Science Fiction")
		assert.Contains(t, prompt, "Directors: Christopher Nolan")
		assert.Contains(t, prompt, "User Question: Where was it filmed?")
	})

	t.Run("Placeholder", func(t *testing.T) {
		svc := NewService(stubMedia{}, &stubRecipes{}, &stubLLM{err: errors.New("quota")}, nil)
		reply, err := svc.Chat(context.Background(), media, "Why?")
		require.NoError(t, err)
		assert.Equal(t, ChatUnavailable, reply.Answer)
		assert.True(t, reply.Degraded)
	})

	t.Run("EmptyQuestion", func(t *testing.T) {
		gen := &stubLLM{}
		svc := NewService(stubMedia{}, &stubRecipes{}, gen, nil)
		_, err := svc.Chat(context.Background(), media, "  ")
		assert.True(t, shared.IsValidation(err))
		assert.Empty(t, gen.prompts)
	})
}

func TestRecommendations(t *testing.T) {
	svc := NewService(stubMedia{err: errors.New("timeout")}, &stubRecipes{}, &stubLLM{}, nil)
	recs, err := svc.Recommendations(context.Background(), tmdb.TypeMovie, 1)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = svc.Recommendations(context.Background(), "person", 1)
	assert.True(t, shared.IsValidation(err))
}

func TestGrocery(t *testing.T) {
	recipes := &stubRecipes{details: map[int]*recipe.Detail{
		1: {
			Recipe:          recipe.Recipe{ID: 1, Servings: 2},
			IngredientLines: []string{"2 cups flour", "1 tsp salt", "a pinch of pepper"},
		},
		2: {
			Recipe:          recipe.Recipe{ID: 2, Servings: 4},
			IngredientLines: []string{"1 cups Flour", "3 large eggs"},
		},
	}}
	svc := NewService(stubMedia{}, recipes, &stubLLM{}, nil)

	t.Run("DefaultsToNativeServings", func(t *testing.T) {
		g, err := svc.Grocery(context.Background(), []int{1, 2}, 0)
		require.NoError(t, err)
		assert.Equal(t, 6, g.Basis.TotalServings)
		assert.Equal(t, 6, g.List.Servings)

		text := g.List.Text()
		assert.True(t, strings.HasPrefix(text, "Grocery List (for 6 servings):\n\n"))
		assert.Contains(t, text, "flour: 3 cups\n")
		assert.Contains(t, text, "eggs: 3 large\n")
		assert.Contains(t, text, "a pinch of pepper: as needed\n")
	})

	t.Run("ScalesFromBasis", func(t *testing.T) {
		g, err := svc.Grocery(context.Background(), []int{1, 2}, 12)
		require.NoError(t, err)
		assert.Contains(t, g.List.Text(), "flour: 6 cups\n")

		again, err := RescaleGrocery(g.Basis, 3)
		require.NoError(t, err)
		assert.Contains(t, again.List.Text(), "flour: 1.5 cups\n")
	})

	t.Run("SkipsMissingRecipes", func(t *testing.T) {
		g, err := svc.Grocery(context.Background(), []int{1, 404}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Basis.TotalServings)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := svc.Grocery(context.Background(), nil, 2)
		assert.True(t, shared.IsValidation(err))

		_, err = svc.Grocery(context.Background(), []int{1}, -1)
		assert.True(t, shared.IsValidation(err))

		_, err = svc.Grocery(context.Background(), []int{404}, 2)
		var appErr *shared.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, shared.CodeUpstream, appErr.Code)

		_, err = RescaleGrocery(shopping.GroceryBasis{}, 0)
		assert.True(t, shared.IsValidation(err))
	})
}
