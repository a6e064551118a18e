package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/placementbot/internal/config"
	"github.com/example/placementbot/internal/database"
	"github.com/example/placementbot/internal/excel"
	"github.com/example/placementbot/internal/quiz"
	"github.com/example/placementbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands served from the results database
const (
	commandHistory = "history"
	commandStats   = "stats"
	commandExport  = "export"
)

// historyLimit is how many past results /history shows
const historyLimit = 5

var errNotConnected = errors.New("bot is not connected")

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// optionButtons lays out answer options one per row
func optionButtons(options []quiz.Option) [][]MenuButton {
	rows := make([][]MenuButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, []MenuButton{{Text: opt.Label, CallbackData: opt.Data}})
	}
	return rows
}

// sender is the part of the Telegram API the bot writes through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// resultStore is the read side of the results database
type resultStore interface {
	GetAll(ctx context.Context) ([]models.ResultRecord, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.ResultRecord, error)
	LevelCounts(ctx context.Context, since time.Time) ([]database.LevelCount, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api        *tgbotapi.BotAPI
	sender     sender
	config     *config.Config
	controller *quiz.Controller
	results    resultStore
}

// New creates a new bot instance. results may be nil, which disables
// /history and the admin commands.
func New(cfg *config.Config, controller *quiz.Controller, results resultStore) *Bot {
	return &Bot{
		config:     cfg,
		controller: controller,
		results:    results,
	}
}

// Connect authorizes with Telegram. It must be called before Start and
// before anything calls SendReport from another goroutine.
func (b *Bot) Connect() error {
	botAPI, err := tgbotapi.NewBotAPI(b.config.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}

	b.api = botAPI
	b.sender = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b.registerCommands()
	return nil
}

// Start handles updates until ctx is done. Updates are handled one at a
// time.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errNotConnected
	}

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// SendReport implements the scheduler.Notifier interface
func (b *Bot) SendReport(userID int64, text string) error {
	if b.sender == nil {
		return errNotConnected
	}
	// In private chats the user ID is the chat ID
	_, err := b.sender.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) registerCommands() {
	list := []tgbotapi.BotCommand{
		{Command: quiz.CommandTest, Description: "Take the placement test"},
		{Command: quiz.CommandCancel, Description: "Cancel the current test"},
		{Command: quiz.CommandHelp, Description: "Show help"},
	}
	if b.results != nil {
		list = append(list, tgbotapi.BotCommand{Command: commandHistory, Description: "Show your recent results"})
	}
	commands := tgbotapi.NewSetMyCommands(list...)
	if _, err := b.sender.Request(commands); err != nil {
		log.Printf("Error registering bot commands: %v", err)
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}
	user := quizUser(message.From, message.Chat.ID)

	if !message.IsCommand() {
		b.reply(message.Chat.ID, 0, b.controller.HandleCommand(ctx, user, ""))
		return
	}

	command := message.Command()
	if b.results != nil && command == commandHistory {
		b.handleHistoryCommand(ctx, user)
		return
	}
	if b.results != nil && b.config.IsAdmin(user.ID) {
		switch command {
		case commandStats:
			b.handleStatsCommand(ctx, message.Chat.ID)
			return
		case commandExport:
			b.handleExportCommand(ctx, message.Chat.ID)
			return
		}
	}

	b.reply(message.Chat.ID, 0, b.controller.HandleCommand(ctx, user, command))
}

// handleCallbackQuery handles answer button presses
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.From == nil {
		return
	}

	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	chatID := callback.From.ID
	messageID := 0
	if callback.Message != nil && callback.Message.Chat != nil {
		chatID = callback.Message.Chat.ID
		messageID = callback.Message.MessageID
	}

	reply := b.controller.HandleChoice(ctx, quizUser(callback.From, chatID), callback.Data)
	b.reply(chatID, messageID, reply)
}

// reply delivers a controller reply. Edits replace messageID when set.
func (b *Bot) reply(chatID int64, messageID int, r quiz.Reply) {
	var msg tgbotapi.Chattable

	if r.Edit && messageID != 0 {
		if len(r.Options) > 0 {
			msg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, r.Text, createKeyboard(optionButtons(r.Options)))
		} else {
			msg = tgbotapi.NewEditMessageText(chatID, messageID, r.Text)
		}
	} else {
		m := tgbotapi.NewMessage(chatID, r.Text)
		if len(r.Options) > 0 {
			m.ReplyMarkup = createKeyboard(optionButtons(r.Options))
		}
		msg = m
	}

	if _, err := b.sender.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) handleHistoryCommand(ctx context.Context, user quiz.User) {
	records, err := b.results.GetByUserID(ctx, user.ID)
	if err != nil {
		log.Printf("Error getting history for user %d: %v", user.ID, err)
		b.reply(user.ChatID, 0, quiz.Reply{Text: "❌ History is not available right now."})
		return
	}
	b.reply(user.ChatID, 0, quiz.Reply{Text: historyText(records)})
}

// historyText lists the newest results first, at most historyLimit of them
func historyText(records []models.ResultRecord) string {
	if len(records) == 0 {
		return "You have no results yet. Send /test to take the test."
	}

	var sb strings.Builder
	sb.WriteString("🗂 Your recent results\n")
	for i, r := range records {
		if i == historyLimit {
			break
		}
		sb.WriteString(fmt.Sprintf("\n%s  %d/%d  %s", r.StartedAt.UTC().Format("2006-01-02 15:04"), r.Score, r.Total, r.Level))
	}
	if len(records) > historyLimit {
		sb.WriteString(fmt.Sprintf("\n\n…and %d more", len(records)-historyLimit))
	}
	return sb.String()
}

func (b *Bot) handleStatsCommand(ctx context.Context, chatID int64) {
	counts, err := b.results.LevelCounts(ctx, time.Time{})
	if err != nil {
		log.Printf("Error getting level counts: %v", err)
		b.reply(chatID, 0, quiz.Reply{Text: "❌ Statistics are not available right now."})
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Results by level\n\n")
	total := 0
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%s: %d\n", c.Level, c.Count))
		total += c.Count
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d", total))

	b.reply(chatID, 0, quiz.Reply{Text: sb.String()})
}

func (b *Bot) handleExportCommand(ctx context.Context, chatID int64) {
	records, err := b.results.GetAll(ctx)
	if err != nil {
		log.Printf("Error getting results for export: %v", err)
		b.reply(chatID, 0, quiz.Reply{Text: "❌ Export failed. Please try again."})
		return
	}

	var buf bytes.Buffer
	if err := excel.ExportResults(records, &buf); err != nil {
		log.Printf("Error building export: %v", err)
		b.reply(chatID, 0, quiz.Reply{Text: "❌ Export failed. Please try again."})
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("results_%s.xlsx", time.Now().UTC().Format("20060102")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("%d results", len(records))
	if _, err := b.sender.Send(doc); err != nil {
		log.Printf("Error sending export to chat %d: %v", chatID, err)
	}
}

func quizUser(from *tgbotapi.User, chatID int64) quiz.User {
	return quiz.User{
		ID:        from.ID,
		ChatID:    chatID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
}
