package app

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"mealmate/internal/advisor"
	"mealmate/internal/companion"
	"mealmate/internal/planner"
	"mealmate/internal/shared"
	"mealmate/internal/trivia"

	"go.uber.org/zap"
)

// GenerateMealPlan plans a week and prints it. A positive servings also
// prints the shopping list scaled to it.
func (a *App) GenerateMealPlan(ctx context.Context, req planner.Request, servings int) error {
	fmt.Fprintf(a.out, "Generating meal plan (%d y/o %s, %s)...\n", req.Age, req.Gender, req.Activity)

	res, err := a.planner.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	fmt.Fprintf(a.out, "\nDaily caloric needs: %.2f kcal\n", res.CaloricNeeds)
	fmt.Fprintf(a.out, "Mood: %s", res.Mood.Label)
	if len(res.Mood.PreferredFoods) > 0 {
		fmt.Fprintf(a.out, " (try: %s)", strings.Join(res.Mood.PreferredFoods, ", "))
	}
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, "\n=== WEEKLY MEAL PLAN ===")
	for _, day := range res.Plan.Days {
		fmt.Fprintln(a.out, day.Day)
		for i, slot := range planner.Slots {
			title := "-"
			if r := day.Meals[i]; r != nil {
				title = r.Title
			}
			fmt.Fprintf(a.out, "  %-10s %s\n", slot+":", title)
		}
	}

	if servings < 1 {
		return nil
	}

	list, err := a.shopping.Compile(ctx, res.Plan, servings)
	if err != nil {
		return fmt.Errorf("failed to compile shopping list: %w", err)
	}
	fmt.Fprintf(a.out, "\n=== SHOPPING LIST (%d servings) ===\n", servings)
	fmt.Fprint(a.out, list.List.Text())
	if list.TotalCost > 0 {
		fmt.Fprintf(a.out, "\nEstimated cost: $%.2f\n", list.TotalCost)
	}
	return nil
}

// PrintCalories validates p and prints the daily calorie estimate.
func (a *App) PrintCalories(p advisor.Profile) error {
	if err := a.planner.Validate(planner.Request{Profile: p}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Daily caloric needs: %.2f kcal\n", advisor.Calories(p))
	return nil
}

// PlayTrivia runs a trivia game on the terminal, reading one letter per
// answer.
func (a *App) PlayTrivia(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("a title is required")
	}

	game := a.trivia.NewGame(ctx, title, "")
	scanner := bufio.NewScanner(a.in)

	for {
		st := game.State()
		if st.GameOver || st.Question == nil {
			break
		}

		fmt.Fprintf(a.out, "\nQuestion %d/%d: %s\n", st.Round, st.Rounds, st.Question.Text)
		for i, l := range trivia.Letters {
			fmt.Fprintf(a.out, "  %c) %s\n", l, st.Question.Options[i])
		}
		fmt.Fprint(a.out, "Your answer: ")

		if !scanner.Scan() {
			break
		}
		outcome, err := game.Submit(answerIndex(scanner.Text()))
		if err != nil {
			fmt.Fprintln(a.out, "Please answer with A, B, C or D.")
			continue
		}
		if outcome.Correct {
			fmt.Fprintln(a.out, "Correct!")
		} else {
			fmt.Fprintf(a.out, "Wrong, the answer was %s.\n", outcome.Answer)
		}
	}

	st := game.State()
	fmt.Fprintf(a.out, "\nGame over! Final score: %d (%d mistakes)\n", st.Score, st.Mistakes)
	return scanner.Err()
}

func answerIndex(s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return -1
	}
	for i, l := range trivia.Letters {
		if s[0] == l {
			return i
		}
	}
	return -1
}

// PrintPairings looks up query, takes the best match and prints food
// pairings for it.
func (a *App) PrintPairings(ctx context.Context, query string) error {
	results, err := a.companion.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return shared.NewNotFoundError("no movie or show matches %q", query)
	}

	media, err := a.companion.Details(ctx, results[0].MediaType, results[0].ID)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", results[0].Label, err)
	}

	fmt.Fprintf(a.out, "%s (%s, %s)\n\n", media.Title, media.MediaType, media.PrimaryGenre("unknown genre"))
	fmt.Fprintln(a.out, companion.DishRecommendation(media))

	pairings, err := a.companion.AllPairings(ctx, media)
	if err != nil {
		return err
	}
	for _, p := range pairings {
		fmt.Fprintf(a.out, "\n%s (%q)\n", strings.ToUpper(p.FoodType), p.Query)
		if len(p.Recipes) == 0 {
			fmt.Fprintln(a.out, "  no recipes found")
		}
		for _, r := range p.Recipes {
			fmt.Fprintf(a.out, "  [%d] %s\n", r.ID, r.Title)
		}
	}
	return nil
}

// CleanupMetrics removes metric records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	if days < 1 {
		return shared.NewValidationError("days must be at least 1, got %d", days)
	}
	affected, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	a.logger.Info("metrics cleanup complete", zap.Int64("removed", affected), zap.Int("kept_days", days))
	fmt.Fprintf(a.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}
