package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"

	tele "gopkg.in/telebot.v4"
)

// Retryable reports whether err is a transient network failure: a timeout,
// a failed dial, or Telegram asking to slow down.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var op *net.OpError
	return errors.As(err, &op) && op.Op == "dial"
}

// Classify returns a short label for err suitable for the err_code field.
func Classify(err error) string {
	var (
		dns   *net.DNSError
		op    *net.OpError
		ne    net.Error
		alert tls.AlertError
		api   *tele.Error
		flood tele.FloodError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dns):
		if dns.IsTimeout {
			return "timeout"
		}
		return "dns"
	case errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	case errors.As(err, &op) && op.Op == "dial":
		return "dial"
	case errors.As(err, &alert):
		return "tls"
	case errors.As(err, &flood):
		return "http_429"
	case errors.As(err, &api):
		if api.Code >= http.StatusInternalServerError {
			return "http_5xx"
		}
		return "http_4xx"
	}
	return "unknown"
}
