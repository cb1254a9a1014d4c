package advisor

import (
	"context"

	"mealmate/internal/sentiment"

	"go.uber.org/zap"
)

// Neutral is reported when the text cannot be classified.
const Neutral = "NEUTRAL"

var moodFoods = map[string][]string{
	"HAPPY":     {"fruit", "salad", "smoothie", "yogurt", "grilled chicken", "berries", "honey", "coconut", "avocado", "oranges"},
	"STRESSED":  {"soup", "whole grain", "dark chocolate", "rice", "pasta", "green tea", "bananas", "oats", "pumpkin seeds", "spinach"},
	"TIRED":     {"lean protein", "whole grain", "citrus", "nuts", "oatmeal", "coffee", "eggs", "watermelon", "chia seeds", "lentils"},
	"SAD":       {"salmon", "nuts", "eggs", "spinach", "avocado", "blueberries", "dark chocolate", "turmeric", "walnuts", "green tea"},
	"ANXIOUS":   {"chamomile", "yogurt", "turmeric", "almonds", "tea", "leafy greens", "blueberries", "fermented foods", "oranges", "asparagus"},
	"FOCUSED":   {"eggs", "nuts", "dark chocolate", "blueberries", "green tea", "avocado", "beets", "broccoli", "pumpkin seeds", "salmon"},
	"ENERGETIC": {"banana", "oatmeal", "quinoa", "sweet potato", "chicken", "oranges", "watermelon", "chia seeds", "yogurt", "dates"},
	"RELAXED":   {"chamomile", "herbal tea", "honey", "oats", "lavender", "almonds", "dark chocolate", "warm milk", "walnuts", "spinach"},
}

// Mood is the result of analyzing a user's mood text.
type Mood struct {
	Label          string   `json:"mood"`
	PreferredFoods []string `json:"preferred_foods"`
}

// FoodsFor returns the foods associated with a mood label, or nil.
func FoodsFor(label string) []string {
	foods := moodFoods[label]
	if foods == nil {
		return nil
	}
	return append([]string(nil), foods...)
}

// Classifier labels free text.
type Classifier interface {
	Classify(ctx context.Context, text string) (sentiment.Label, error)
}

// MoodAdvisor maps a sentiment classification to preferred foods.
type MoodAdvisor struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewMoodAdvisor creates a MoodAdvisor.
func NewMoodAdvisor(classifier Classifier, logger *zap.Logger) *MoodAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoodAdvisor{classifier: classifier, logger: logger.Named("mood")}
}

// Analyze classifies text. It never fails: any classification error yields
// the neutral mood with no foods.
func (a *MoodAdvisor) Analyze(ctx context.Context, text string) Mood {
	if a.classifier == nil {
		return Mood{Label: Neutral}
	}
	label, err := a.classifier.Classify(ctx, text)
	if err != nil {
		a.logger.Warn("mood classification failed", zap.Error(err))
		return Mood{Label: Neutral}
	}
	return Mood{Label: label.Label, PreferredFoods: FoodsFor(label.Label)}
}
