package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mealmate/internal/advisor"
	"mealmate/internal/app"
	"mealmate/internal/config"
	"mealmate/internal/logger"
	"mealmate/internal/planner"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		lg.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		application.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "plan":
		fs := flag.NewFlagSet("plan", flag.ExitOnError)
		profile := profileFlags(fs)
		mood := fs.String("mood", "", "How you feel today, used for mood-based suggestions")
		ingredients := fs.String("ingredients", "", "Comma-separated ingredients to include")
		allergens := fs.String("allergens", "", "Comma-separated ingredients to avoid")
		cuisines := fs.String("cuisines", "", "Comma-separated cuisines (Any for no preference)")
		minCal := fs.Int("min-calories", 0, "Minimum calories per recipe")
		maxCal := fs.Int("max-calories", 0, "Maximum calories per recipe")
		servings := fs.Int("servings", 0, "Also print the shopping list for N servings")
		fs.Parse(args)

		return a.GenerateMealPlan(ctx, planner.Request{
			Profile:     *profile,
			MoodText:    *mood,
			Ingredients: splitList(*ingredients),
			Allergens:   splitList(*allergens),
			Cuisines:    splitList(*cuisines),
			MinCalories: *minCal,
			MaxCalories: *maxCal,
		}, *servings)

	case "calories":
		fs := flag.NewFlagSet("calories", flag.ExitOnError)
		profile := profileFlags(fs)
		fs.Parse(args)
		return a.PrintCalories(*profile)

	case "trivia":
		return a.PlayTrivia(ctx, strings.Join(args, " "))

	case "pair":
		return a.PrintPairings(ctx, strings.Join(args, " "))

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		return a.CleanupMetrics(ctx, *days)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	return nil
}

func profileFlags(fs *flag.FlagSet) *advisor.Profile {
	p := &advisor.Profile{}
	fs.IntVar(&p.Age, "age", 30, "Age in years (18-80)")
	fs.StringVar(&p.Gender, "gender", "Female", "Male or Female")
	fs.Float64Var(&p.WeightKg, "weight", 70, "Weight in kg (40-150)")
	fs.Float64Var(&p.HeightCm, "height", 170, "Height in cm (140-210)")
	fs.StringVar(&p.Activity, "activity", advisor.Sedentary, "Sedentary, Light, Moderate or Active")
	return p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printUsage() {
	fmt.Println("Usage: mealmate <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate next week's meal plan (see plan -h)")
	fmt.Println("  calories           Estimate daily caloric needs")
	fmt.Println("  trivia <title>     Play a trivia game about a movie or show")
	fmt.Println("  pair <title>       Suggest recipes to enjoy with a movie or show")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
