package companion

import (
	"fmt"

	"mealmate/internal/tmdb"
)

const dishGenre = "Drama"

var dishesByGenre = map[string]string{
	"Action":          "For action movies, we recommend hearty, protein-rich foods like steak, burgers, or loaded nachos that will fuel your adrenaline!",
	"Comedy":          "Light, fun finger foods work well with comedies - try a variety of tapas, mini sliders, or a colorful charcuterie board.",
	"Drama":           "Dramatic films pair well with sophisticated comfort foods like pasta dishes, risotto, or a well-crafted cheese board.",
	"Horror":          "Dark, intense foods complement horror films - try a blood-red pasta, blackened chicken, or dark chocolate desserts.",
	"Romance":         "Romantic movies call for sensual foods like chocolate-covered strawberries, champagne, and elegant seafood dishes.",
	"Science Fiction": "For sci-fi, try futuristic presentations - colorful foods with unexpected combinations or molecular gastronomy-inspired dishes.",
	"Adventure":       "Adventure films pair well with exotic cuisine from the regions featured in the movie - tacos, curries, or Mediterranean dishes.",
	"Fantasy":         "Magical, whimsical dishes work with fantasy - try colorful foods, themed cupcakes, or elaborate desserts.",
	"Animation":       "Fun, colorful foods that appeal to all ages - bright fruit platters, themed cookies, or creative sushi rolls.",
	"Thriller":        "Intense, spicy foods match the tension in thrillers - try fiery curries, bold flavors, and dark beverages.",
	"Documentary":     "Authentic cuisine related to the documentary's subject matter or healthy, mindful food choices.",
	"Family":          "Crowd-pleasing classics that everyone can enjoy - pizza, pasta bars, or build-your-own taco stations.",
}

const defaultDishes = "We recommend exploring international cuisines like Italian pasta, Asian stir-fry, or Mediterranean platters that everyone can enjoy."

// DishRecommendation suggests dishes for the primary genre of media.
func DishRecommendation(media *tmdb.Media) string {
	rec, ok := dishesByGenre[media.PrimaryGenre(dishGenre)]
	if !ok {
		rec = defaultDishes
	}
	return fmt.Sprintf("Based on '%s', %s Consider pairing with themed drinks that match the movie's mood!", media.Title, rec)
}
