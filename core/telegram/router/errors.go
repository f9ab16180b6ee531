package router

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// errCode names err for the err_code field: a Code() string when the error
// offers one, the Telegram API code, or else its Go type.
func errCode(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) && coder.Code() != "" {
		return strings.ToUpper(coder.Code())
	}
	var api *tele.Error
	if errors.As(err, &api) {
		return fmt.Sprintf("TG_%d", api.Code)
	}
	t := strings.TrimLeft(fmt.Sprintf("%T", err), "*")
	if _, name, ok := strings.Cut(t, "."); ok {
		t = name
	}
	return strings.ToUpper(t)
}
