package telegram

import (
	"fmt"
	"strings"

	"mealmate/internal/metrics"
	"mealmate/internal/planner"
	"mealmate/internal/shared"
	"mealmate/internal/shopping"
	"mealmate/internal/trivia"
)

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatPlanMarkdownParts(res *planner.Result) (string, string) {
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("📅 *Weekly Meal Plan* (week of %s)\n\n", res.Plan.WeekStart.Format("2006-01-02")))

	for _, day := range res.Plan.Days {
		pb.WriteString(fmt.Sprintf("*%s*\n", day.Day))
		for i, slot := range planner.Slots {
			r := day.Meals[i]
			if r == nil {
				pb.WriteString(fmt.Sprintf("• %s: _nothing found_\n", slot))
				continue
			}
			pb.WriteString(fmt.Sprintf("• %s: %s", slot, escape(r.Title)))
			if r.ReadyInMinutes > 0 {
				pb.WriteString(fmt.Sprintf(" (%d mins)", r.ReadyInMinutes))
			}
			pb.WriteString("\n")
		}
		pb.WriteString("\n")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔥 *Daily caloric needs:* %.2f kcal\n", res.CaloricNeeds))
	sb.WriteString(fmt.Sprintf("🙂 *Mood:* %s\n", res.Mood.Label))
	if len(res.Mood.PreferredFoods) > 0 {
		sb.WriteString(fmt.Sprintf("_Comfort picks:_ %s\n", escape(strings.Join(res.Mood.PreferredFoods, ", "))))
	}
	sb.WriteString("\nSend `/shopping 2` for the shopping list.")

	return pb.String(), sb.String()
}

func formatShoppingMarkdown(res *shopping.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* (%d servings)\n\n", res.Servings))
	if res.List.Len() == 0 {
		sb.WriteString("_No ingredients could be collected._\n")
		return sb.String()
	}
	for _, line := range strings.Split(strings.TrimSpace(res.List.Text()), "\n") {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(line)))
	}
	if res.TotalCost > 0 {
		sb.WriteString(fmt.Sprintf("\n💵 *Estimated cost:* $%.2f\n", res.TotalCost))
	}
	return sb.String()
}

func formatQuestion(title string, st trivia.State) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎬 *%s* trivia, question %d/%d\n\n", escape(title), st.Round, st.Rounds))
	sb.WriteString(escape(st.Question.Text) + "\n\n")
	for i, l := range trivia.Letters {
		sb.WriteString(fmt.Sprintf("*%c*) %s\n", l, escape(st.Question.Options[i])))
	}
	sb.WriteString(fmt.Sprintf("\nScore: %d · Mistakes: %d/%d", st.Score, st.Mistakes, trivia.MaxMistakes))
	return sb.String()
}

func formatOutcome(o trivia.Outcome) string {
	if o.Correct {
		return "✅ Correct!"
	}
	if o.Answer == "" {
		return "🏁 The game is already over."
	}
	return fmt.Sprintf("❌ Wrong, the answer was *%s*.", o.Answer)
}

func formatFinalScore(title string, st trivia.State) string {
	return fmt.Sprintf("🏁 *Game over!* %s\nFinal score: *%d* (%d mistakes)\nStart again with `/trivia title`.",
		escape(title), st.Score, st.Mistakes)
}

func formatMetricsReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

func errorText(err error) string {
	appErr := shared.AsAppError(err)
	switch appErr.Code {
	case shared.CodeValidation:
		return "⚠️ " + escape(appErr.Message) + "\n\nSend /help for usage."
	case shared.CodeUpstream:
		return "❌ *A recipe or model service is unavailable.* Please try again later."
	default:
		return "❌ *Something went wrong.* Please try again."
	}
}
