package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/m3rciful/tictactoe-bot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command and how it appears in the bot menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands run only for telegram.admin_id and never show in the menu.
	AdminOnly bool
	Hidden    bool
}

// Registry collects the commands, callback handlers and fallbacks a bot
// serves. Routers turn it into telebot routes.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]Command
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd Command) error {
	switch {
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return fmt.Errorf("command %q: name must start with /", name)
	case cmd.Handler == nil:
		return fmt.Errorf("command %s: nil handler", name)
	case cmd.Description == "":
		return fmt.Errorf("command %s: empty description", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; ok {
		return fmt.Errorf("command %s: already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

// Command looks a command up by name, with or without the leading slash.
func (r *Registry) Command(name string) (Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the registered command names in order.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.commands))
}

// Menu lists the commands users should see, sorted by name.
func (r *Registry) Menu() []tele.Command {
	var menu []tele.Command
	for _, name := range r.Commands() {
		cmd, _ := r.Command(name)
		if cmd.Hidden || cmd.AdminOnly {
			continue
		}
		menu = append(menu, tele.Command{Text: name, Description: cmd.Description})
	}
	return menu
}

// RegisterCallback routes inline button presses carrying key to h.
func (r *Registry) RegisterCallback(key string, h tele.HandlerFunc) error {
	if key == "" || h == nil {
		return errors.New("callback: empty key or nil handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[key]; ok {
		return fmt.Errorf("callback %s: already registered", key)
	}
	r.callbacks[key] = h
	return nil
}

func (r *Registry) Callback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// Callbacks returns the registered callback keys in order.
func (r *Registry) Callbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.callbacks))
}

// SetCallbackNotFound sets the handler for presses with an unknown key.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text that is not a known command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	r.textFallback = h
	r.mu.Unlock()
}

func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// publishMenu installs the visible commands as the bot's command menu.
func publishMenu(bot *tele.Bot, reg *Registry) {
	menu := reg.Menu()
	if err := bot.SetCommands(menu); err != nil {
		logger.Error(context.Background(), "tg.wire", "menu.publish",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(context.Background(), "tg.wire", "menu.publish",
		slog.String("status", "ok"),
		slog.Int("count", len(menu)),
	)
}
