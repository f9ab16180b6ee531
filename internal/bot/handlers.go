// Package bot connects the game service to Telegram: inline mode creates
// rounds, button callbacks drive them, and a few commands report on them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	tg "github.com/m3rciful/tictactoe-bot/core/telegram"
	"github.com/m3rciful/tictactoe-bot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/tictactoe-bot/core/telegram/helpers"
	"github.com/m3rciful/tictactoe-bot/internal/game"
	"github.com/m3rciful/tictactoe-bot/internal/service"
	"github.com/m3rciful/tictactoe-bot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

const component = "tg.games"

// User-facing texts.
const (
	ArticleTitle   = "Create Tic-Tac-Toe 3x3 round."
	ArticleText    = "Tic-Tac-Toe round created!"
	MsgNoGame      = "Game does not exist :(("
	MsgFailed      = "Something went wrong, try again later."
	MsgGreeting    = "Hi! Use inline query to create a game."
	MsgUsage       = "Type the bot's @username in any chat and pick \"" + ArticleTitle + "\".\nPress \"Play for\" to take a side, then take turns pressing cells."
	MsgUnknownText = "I only understand commands. Use inline query to create a game."
	MsgRate        = "⭐️ If you like the bot, please [rate and give feedback](%s). ⭐️"
	MsgSlowDown    = "Too fast, try again in a moment."
)

// Games is what the handlers need from the game service.
type Games interface {
	CreateGame(ctx context.Context, id string) error
	Handle(ctx context.Context, gameID, eventID string, requester game.Player, token string) ([]game.Intent, error)
	Stats(ctx context.Context) (storage.Stats, error)
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Options configures Handlers.
type Options struct {
	// PurgeAfter is how long finished games are kept before /purge removes them.
	PurgeAfter time.Duration
	// RateURL is linked from /rate; the command is not registered when empty.
	RateURL string
}

// Handlers holds the Telegram handlers of the game bot.
type Handlers struct {
	games Games
	opts  Options
}

// New builds the handlers over games.
func New(games Games, opts Options) *Handlers {
	return &Handlers{games: games, opts: opts}
}

// Register adds the commands and the game callback to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	errs := []error{
		reg.RegisterCommand("/start", tg.Command{Handler: h.Start, Description: "Say hello"}),
		reg.RegisterCommand("/help", tg.Command{Handler: h.Help, Description: "How to play"}),
		reg.RegisterCommand("/status", tg.Command{Handler: h.Status, Description: "Games and players count"}),
		reg.RegisterCommand("/purge", tg.Command{
			Handler:     h.Purge,
			Description: "Delete old finished games",
			AdminOnly:   true,
			Hidden:      true,
		}),
	}
	if h.opts.RateURL != "" {
		errs = append(errs, reg.RegisterCommand("/rate", tg.Command{Handler: h.Rate, Description: "Rate the bot"}))
	}
	if err := reg.RegisterCallback(CallbackKey, h.Callback); err != nil {
		errs = append(errs, fmt.Errorf("register game callback: %w", err))
	}
	reg.SetCallbackNotFound(h.UnknownCallback())
	reg.SetTextFallback(h.UnknownText())
	return errors.Join(errs...)
}

// Query answers any inline query with the single "create round" article.
func (h *Handlers) Query(c tele.Context) error {
	result := &tele.ArticleResult{Title: ArticleTitle, Text: ArticleText}
	result.SetResultID(uuid.NewString())
	result.ReplyMarkup = InitialMarkup()
	return c.Answer(&tele.QueryResponse{
		Results:    tele.Results{result},
		CacheTime:  0,
		IsPersonal: true,
	})
}

// InlineResult creates the game behind a sent article. Telegram only delivers
// chosen results with inline feedback enabled for the bot.
func (h *Handlers) InlineResult(c tele.Context) error {
	ctx := tghelpers.Context(c)
	r := c.InlineResult()
	if r == nil || r.MessageID == "" {
		logger.Warn(ctx, component, "game.create",
			slog.String("status", "skip"),
			slog.String("reason", "no_inline_message_id"),
		)
		return nil
	}
	return h.games.CreateGame(ctx, r.MessageID)
}

// Callback handles a press on one of the game buttons.
func (h *Handlers) Callback(c tele.Context) error {
	ctx := tghelpers.Context(c)
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	if cb.MessageID == "" {
		return c.Respond(&tele.CallbackResponse{Text: MsgNoGame})
	}

	intents, err := h.games.Handle(ctx, cb.MessageID, cb.ID, playerFrom(c.Sender()), callbacks.CallbackPayload(c))
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrGameNotFound):
		return c.Respond(&tele.CallbackResponse{Text: MsgNoGame})
	case err != nil:
		_ = c.Respond(&tele.CallbackResponse{Text: MsgFailed})
		return err
	}
	return Execute(ctx, contextTransport{c: c}, intents)
}

// Start greets the user.
func (h *Handlers) Start(c tele.Context) error {
	return tghelpers.SendText(c, MsgGreeting)
}

// Help explains how to start a round.
func (h *Handlers) Help(c tele.Context) error {
	return tghelpers.SendText(c, MsgGreeting+"\n"+MsgUsage)
}

// Status reports game and player counts.
func (h *Handlers) Status(c tele.Context) error {
	st, err := h.games.Stats(tghelpers.Context(c))
	if err != nil {
		_ = tghelpers.SendText(c, MsgFailed)
		return err
	}
	return tghelpers.SendText(c, FormatStats(st))
}

// Rate links to the rating page.
func (h *Handlers) Rate(c tele.Context) error {
	return tghelpers.SendMD(c, fmt.Sprintf(MsgRate, h.opts.RateURL))
}

// Purge deletes finished games older than the configured retention.
func (h *Handlers) Purge(c tele.Context) error {
	n, err := h.games.Purge(tghelpers.Context(c), h.opts.PurgeAfter)
	if err != nil {
		_ = tghelpers.SendText(c, MsgFailed)
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Deleted %d finished games.", n))
}

// FormatStats renders the /status reply.
func FormatStats(st storage.Stats) string {
	return fmt.Sprintf("%d games running now.\nTotal number of games - %d.\n%d players.",
		st.InProgress, st.Total, st.Players)
}

func playerFrom(u *tele.User) game.Player {
	if u == nil {
		return game.Player{}
	}
	return game.Player{
		ID:       u.ID,
		Name:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Username: u.Username,
	}
}
