// Package telegram exposes the planner and the trivia game as a Telegram bot
// driven by webhook updates.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"mealmate/internal/advisor"
	"mealmate/internal/config"
	"mealmate/internal/metrics"
	"mealmate/internal/planner"
	"mealmate/internal/session"
	"mealmate/internal/shared"
	"mealmate/internal/shopping"
	"mealmate/internal/trivia"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	triviaCallbackPrefix = "trivia|"
	requestTimeout       = 2 * time.Minute
)

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Planner generates weekly plans.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Result, error)
	Validate(req planner.Request) error
}

// ShoppingCompiler builds and rescales shopping lists.
type ShoppingCompiler interface {
	Basis(ctx context.Context, plan planner.WeekPlan) shopping.Basis
	Rescale(ctx context.Context, basis shopping.Basis, desiredServings int) (*shopping.Result, error)
}

// TriviaMaker starts trivia games.
type TriviaMaker interface {
	NewGame(ctx context.Context, title, overview string) *trivia.Game
}

// UsageReporter reports recorded model usage.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Deps are the services behind the bot commands.
type Deps struct {
	Planner  Planner
	Shopping ShoppingCompiler
	Trivia   TriviaMaker
	Sessions session.Store
	Usage    UsageReporter
}

// Options restrict who may use the bot.
type Options struct {
	AllowedUserIDs []int64
	AdminID        int64
	DataDir        string
}

// Bot wraps the Telegram API and the mealmate services.
type Bot struct {
	api    Sender
	deps   Deps
	opts   Options
	logger *zap.Logger

	// chat id -> *sync.Mutex; updates of one chat touch one session.
	chatLocks sync.Map
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, deps Deps, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	b := newBot(api, deps, Options{
		AllowedUserIDs: cfg.TelegramAllowedUserIDs,
		AdminID:        cfg.AdminTelegramID,
		DataDir:        dataDir(cfg.DatabasePath),
	}, logger)
	b.logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", zap.String("description", resp.Description))

	return b, nil
}

func newBot(api Sender, deps Deps, opts Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, deps: deps, opts: opts, logger: logger.Named("telegram")}
}

func (b *Bot) lockChat(chatID int64) func() {
	v, _ := b.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func dataDir(dbPath string) string {
	if i := strings.LastIndex(dbPath, "/"); i > 0 {
		return dbPath[:i]
	}
	return "."
}

// ServeHTTP handles webhook updates. Telegram only needs a 200; the work
// happens in the background.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	switch {
	case update.CallbackQuery != nil:
		if !b.allowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		if !b.allowed(update.Message.From) {
			return
		}
		go b.processMessage(update.Message)
	}
}

func (b *Bot) allowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if slices.Contains(b.opts.AllowedUserIDs, from.ID) {
		return true
	}
	b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", from.ID), zap.String("username", from.UserName))
	return false
}

func sessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// splitCommand returns the command name without slash or bot suffix, and
// its arguments.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", fields
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	defer b.lockChat(msg.Chat.ID)()

	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "plan":
		b.handlePlan(ctx, msg.Chat.ID, args)
	case "shopping":
		b.handleShopping(ctx, msg.Chat.ID, args)
	case "calories":
		b.handleCalories(msg.Chat.ID, args)
	case "trivia":
		b.handleTrivia(ctx, msg.Chat.ID, args)
	case "metrics":
		if msg.From.ID != b.opts.AdminID {
			b.send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ *Access Denied*: Admin only."))
			return
		}
		b.handleMetricsCommand(ctx, msg.Chat.ID)
	default:
		b.send(markdown(msg.Chat.ID, helpText))
	}
}

const helpText = "🍽 *mealmate*\n\n" +
	"`/plan age gender weight height activity [mood]` plan next week\n" +
	"`/shopping servings` shopping list for the current plan\n" +
	"`/calories age gender weight height activity` daily calorie estimate\n" +
	"`/trivia title` play movie trivia\n\n" +
	"_Example:_ `/plan 30 female 60 165 moderate feeling great today`"

// parseProfile reads "age gender weight height activity" from the first five
// arguments and returns the rest.
func parseProfile(args []string) (advisor.Profile, []string, error) {
	if len(args) < 5 {
		return advisor.Profile{}, nil, shared.NewValidationError("expected: age gender weight height activity")
	}
	age, err := strconv.Atoi(args[0])
	if err != nil {
		return advisor.Profile{}, nil, shared.NewValidationError("age must be a whole number, got %q", args[0])
	}
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return advisor.Profile{}, nil, shared.NewValidationError("weight must be a number, got %q", args[2])
	}
	height, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return advisor.Profile{}, nil, shared.NewValidationError("height must be a number, got %q", args[3])
	}
	return advisor.Profile{
		Age:      age,
		Gender:   titleCase(args[1]),
		WeightKg: weight,
		HeightCm: height,
		Activity: titleCase(args[4]),
	}, args[5:], nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, args []string) {
	profile, rest, err := parseProfile(args)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	req := planner.Request{Profile: profile, MoodText: strings.Join(rest, " ")}
	if err := b.deps.Planner.Validate(req); err != nil {
		b.sendError(chatID, err)
		return
	}

	sentMsg, err := b.api.Send(markdown(chatID, "🧑‍🍳 *Thinking...* \n(Searching recipes and filling your week)"))
	if err != nil {
		b.logger.Warn("failed to send initial reply", zap.Error(err))
		return
	}

	res, err := b.deps.Planner.Plan(ctx, req)
	if err != nil {
		b.logger.Error("error generating plan", zap.Int64("chat_id", chatID), zap.Error(err))
		b.edit(chatID, sentMsg.MessageID, errorText(err))
		return
	}

	st, err := session.Load(ctx, b.deps.Sessions, sessionID(chatID))
	if err == nil {
		st.SetPlan(res)
		err = b.saveSession(ctx, st)
	}
	if err != nil {
		b.logger.Warn("failed to store plan", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	planText, summaryText := formatPlanMarkdownParts(res)
	b.edit(chatID, sentMsg.MessageID, planText)
	b.send(markdown(chatID, summaryText))
}

func (b *Bot) handleShopping(ctx context.Context, chatID int64, args []string) {
	servings := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			b.sendError(chatID, shared.NewValidationError("servings must be a whole number, got %q", args[0]))
			return
		}
		servings = n
	}
	if servings < 1 {
		b.sendError(chatID, shared.NewValidationError("servings must be at least 1, got %d", servings))
		return
	}

	st, err := session.Load(ctx, b.deps.Sessions, sessionID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if st.Plan == nil {
		b.send(markdown(chatID, "🗓 No plan yet. Send `/plan` first."))
		return
	}

	if st.Shopping == nil {
		basis := b.deps.Shopping.Basis(ctx, st.Plan.Plan)
		st.Shopping = &basis
		if err := b.saveSession(ctx, st); err != nil {
			b.logger.Warn("failed to store shopping basis", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	res, err := b.deps.Shopping.Rescale(ctx, *st.Shopping, servings)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.send(markdown(chatID, formatShoppingMarkdown(res)))
}

func (b *Bot) handleCalories(chatID int64, args []string) {
	profile, _, err := parseProfile(args)
	if err == nil {
		err = b.deps.Planner.Validate(planner.Request{Profile: profile})
	}
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.send(markdown(chatID, fmt.Sprintf("🔥 *Daily caloric needs:* %.2f kcal", advisor.Calories(profile))))
}

func (b *Bot) handleTrivia(ctx context.Context, chatID int64, args []string) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		b.send(markdown(chatID, "🎬 Which title? Try `/trivia Inception`."))
		return
	}

	st, err := session.Load(ctx, b.deps.Sessions, sessionID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	st.Trivia = b.deps.Trivia.NewGame(ctx, title, "")
	b.sendQuestion(chatID, st.Trivia)
	if err := b.saveSession(ctx, st); err != nil {
		b.logger.Warn("failed to store trivia game", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendQuestion(chatID int64, game *trivia.Game) {
	state := game.State()
	if state.GameOver || state.Question == nil {
		b.send(markdown(chatID, formatFinalScore(game.Title, state)))
		return
	}

	msg := markdown(chatID, formatQuestion(game.Title, state))
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(trivia.Letters))
	for i, l := range trivia.Letters {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(l), triviaCallbackData(state.Round, i)))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	b.send(msg)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Debug("failed to answer callback", zap.Error(err))
	}

	round, option, ok := parseTriviaCallback(query.Data)
	if !ok || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	defer b.lockChat(chatID)()

	st, err := session.Load(ctx, b.deps.Sessions, sessionID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if st.Trivia == nil {
		b.send(markdown(chatID, "🎬 No game running. Start one with `/trivia title`."))
		return
	}

	if state := st.Trivia.State(); state.GameOver || state.Round != round {
		b.logger.Debug("ignoring answer to a stale question",
			zap.Int64("chat_id", chatID), zap.Int("round", round), zap.Int("current_round", state.Round))
		return
	}

	outcome, err := st.Trivia.Submit(option)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if err := b.saveSession(ctx, st); err != nil {
		b.logger.Warn("failed to store trivia game", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	// Remove the buttons of the answered question.
	b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, query.Message.Text))

	b.send(markdown(chatID, formatOutcome(outcome)))
	b.sendQuestion(chatID, st.Trivia)
}

// triviaCallbackData stamps the answer with its round so a repeated tap on an
// answered question is recognised.
func triviaCallbackData(round, option int) string {
	return fmt.Sprintf("%s%d|%d", triviaCallbackPrefix, round, option)
}

func parseTriviaCallback(data string) (round, option int, ok bool) {
	raw, ok := strings.CutPrefix(data, triviaCallbackPrefix)
	if !ok {
		return 0, 0, false
	}
	r, o, ok := strings.Cut(raw, "|")
	if !ok {
		return 0, 0, false
	}
	round, err := strconv.Atoi(r)
	if err != nil {
		return 0, 0, false
	}
	option, err = strconv.Atoi(o)
	if err != nil {
		return 0, 0, false
	}
	return round, option, true
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	if b.deps.Usage == nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Metrics are not enabled."))
		return
	}
	usage, err := b.deps.Usage.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error("failed to fetch metrics", zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	b.send(markdown(chatID, formatMetricsReport(usage, metrics.GetSysHealth(b.opts.DataDir))))
}

// SendAdminAlert notifies the admin, if one is configured.
func (b *Bot) SendAdminAlert(text string) {
	if b.opts.AdminID == 0 {
		return
	}
	b.send(markdown(b.opts.AdminID, text))
}

func (b *Bot) saveSession(ctx context.Context, st *session.State) error {
	st.UpdatedAt = time.Now().UTC()
	return b.deps.Sessions.Save(ctx, st)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) sendError(chatID int64, err error) {
	b.send(markdown(chatID, errorText(err)))
}

func markdown(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}
