package companion

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"mealmate/internal/llm"
	"mealmate/internal/recipe"
	"mealmate/internal/shared"
	"mealmate/internal/tmdb"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Food types offered for pairing.
const (
	FoodSnack      = "snack"
	FoodMainCourse = "main course"
	FoodDessert    = "dessert"
)

// FoodTypes lists the pairing courses in display order.
var FoodTypes = []string{FoodSnack, FoodMainCourse, FoodDessert}

const (
	pairingResults = 4
	pairingGenre   = "Comedy"
)

//go:embed pairing_prompt.md
var pairingPrompt string

var pairingTmpl = template.Must(template.New("pairing").Parse(pairingPrompt))

type pairingData struct {
	Title    string
	Genre    string
	Overview string
	FoodType string
}

// genreQueries is used when the model answer is too short, and, in its
// first seven entries, when the model is unavailable.
var genreQueries = []struct {
	genre  string
	prefix string
}{
	{"Comedy", "fun party"},
	{"Drama", "elegant sophisticated"},
	{"Action", "hearty protein-packed"},
	{"Sci-Fi", "futuristic molecular gastronomy"},
	{"Horror", "halloween themed"},
	{"Romance", "romantic date night"},
	{"Adventure", "exotic international"},
	{"Animation", "colorful fun"},
	{"Family", "crowd-pleasing"},
}

const offlineGenreQueries = 7

var cuisineKeywords = []string{"korean", "japanese", "italian", "french", "mexican", "indian", "chinese"}

// RecipeOption is a recipe offered as a pairing.
type RecipeOption struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// Pairing is the set of recipes found for one course.
type Pairing struct {
	FoodType string         `json:"food_type"`
	Query    string         `json:"query"`
	Recipes  []RecipeOption `json:"recipes"`
}

// Pairings finds recipes of foodType that suit media.
func (s *Service) Pairings(ctx context.Context, media *tmdb.Media, foodType string) (Pairing, error) {
	foodType = strings.ToLower(strings.TrimSpace(foodType))
	if !slices.Contains(FoodTypes, foodType) {
		return Pairing{}, shared.NewValidationError("food type must be one of %s", strings.Join(FoodTypes, ", "))
	}

	query := s.pairingQuery(ctx, media, foodType)
	p := Pairing{FoodType: foodType, Query: query, Recipes: s.searchOptions(ctx, query)}
	if len(p.Recipes) == 0 {
		p.Query = foodType + " recipe"
		p.Recipes = s.searchOptions(ctx, p.Query)
	}
	return p, nil
}

// AllPairings runs Pairings for every course concurrently.
func (s *Service) AllPairings(ctx context.Context, media *tmdb.Media) ([]Pairing, error) {
	out := make([]Pairing, len(FoodTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, ft := range FoodTypes {
		g.Go(func() error {
			p, err := s.Pairings(gctx, media, ft)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) pairingQuery(ctx context.Context, media *tmdb.Media, foodType string) string {
	genre := media.PrimaryGenre(pairingGenre)

	var buf bytes.Buffer
	err := pairingTmpl.Execute(&buf, pairingData{
		Title:    media.Title,
		Genre:    genre,
		Overview: media.Overview,
		FoodType: foodType,
	})
	if err == nil {
		var resp llm.ContentResponse
		resp, err = s.textGen.GenerateContent(ctx, buf.String(),
			llm.WithMaxTokens(20),
			llm.WithTemperature(0.7),
			llm.WithOperation("pairing_query"),
		)
		if err == nil {
			query := strings.Trim(strings.TrimSpace(resp.Content), `"'`)
			if len(strings.Fields(query)) >= 2 {
				return query
			}
			return genreQuery(genre, foodType, len(genreQueries))
		}
	}

	s.logger.Warn("pairing query generation failed, using fallback", zap.String("title", media.Title), zap.Error(err))
	title := strings.ToLower(media.Title)
	for _, kw := range cuisineKeywords {
		if strings.Contains(title, kw) {
			return kw + " " + foodType
		}
	}
	return genreQuery(genre, foodType, offlineGenreQueries)
}

// genreQuery looks genre up in the first n entries of the genre table.
func genreQuery(genre, foodType string, n int) string {
	for _, gq := range genreQueries[:n] {
		if gq.genre == genre {
			return gq.prefix + " " + foodType
		}
	}
	return fmt.Sprintf("%s %s", genre, foodType)
}

func (s *Service) searchOptions(ctx context.Context, query string) []RecipeOption {
	recipes, err := s.recipes.Search(ctx, recipe.Query{Text: query, Number: pairingResults})
	if err != nil {
		s.logger.Warn("pairing search failed", zap.String("query", query), zap.Error(err))
		return []RecipeOption{}
	}
	opts := make([]RecipeOption, 0, len(recipes))
	for _, r := range recipes {
		opts = append(opts, RecipeOption{ID: r.ID, Title: r.Title, Image: r.Image})
	}
	return opts
}
