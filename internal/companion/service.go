// Package companion implements the movie companion: title lookup, meal
// pairing, dish suggestions, chat and grocery lists for picked recipes.
package companion

import (
	"context"

	"mealmate/internal/llm"
	"mealmate/internal/recipe"
	"mealmate/internal/tmdb"

	"go.uber.org/zap"
)

// MediaSource looks up movies and TV shows.
type MediaSource interface {
	Search(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	Details(ctx context.Context, mediaType string, id int) (*tmdb.Media, error)
	Recommendations(ctx context.Context, mediaType string, id int) ([]tmdb.Recommendation, error)
}

// RecipeFinder searches recipes and fetches their detail.
type RecipeFinder interface {
	Search(ctx context.Context, q recipe.Query) ([]recipe.Recipe, error)
	Information(ctx context.Context, id int) (*recipe.Detail, error)
}

// Service is the movie companion.
type Service struct {
	media   MediaSource
	recipes RecipeFinder
	textGen llm.TextGenerator
	logger  *zap.Logger
}

// NewService creates a companion service.
func NewService(media MediaSource, recipes RecipeFinder, textGen llm.TextGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		media:   media,
		recipes: recipes,
		textGen: textGen,
		logger:  logger.Named("companion"),
	}
}

// Search finds movies and shows.
func (s *Service) Search(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	return s.media.Search(ctx, query)
}

// Details returns the full view of a title.
func (s *Service) Details(ctx context.Context, mediaType string, id int) (*tmdb.Media, error) {
	return s.media.Details(ctx, mediaType, id)
}

// Recommendations returns similar titles. Upstream failures yield an empty
// list.
func (s *Service) Recommendations(ctx context.Context, mediaType string, id int) ([]tmdb.Recommendation, error) {
	if err := tmdb.ValidateMediaType(mediaType); err != nil {
		return nil, err
	}
	recs, err := s.media.Recommendations(ctx, mediaType, id)
	if err != nil {
		s.logger.Warn("recommendations unavailable", zap.String("media_type", mediaType), zap.Int("id", id), zap.Error(err))
		return []tmdb.Recommendation{}, nil
	}
	if recs == nil {
		recs = []tmdb.Recommendation{}
	}
	return recs, nil
}
