package telegram

import (
	"net"
	"net/http"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	"github.com/m3rciful/tictactoe-bot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// NewPoller returns a webhook listener in webhook mode and a long poller otherwise.
func NewPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:   net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeout := defaultLongPollTimeout
	if s := cfg.Telegram.LongPollTimeoutSeconds; s > 0 {
		timeout = time.Duration(s) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}

// NewHTTPClient returns the client used for Bot API calls. Requests that
// fail with a transient network error are retried twice.
func NewHTTPClient() *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	// Long polling holds getUpdates open for the poll timeout, so the client
	// timeout must exceed it.
	return &http.Client{
		Timeout:   time.Minute,
		Transport: retryTransport{base: base, retries: 2, backoff: time.Second},
	}
}

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return t.base.RoundTrip(req)
	}
	var resp *http.Response
	first := true
	_, err := sender.Do(req.Context(), t.retries, t.backoff, 0, func() error {
		r := req
		if !first {
			r = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return err
				}
				r.Body = body
			}
		}
		first = false
		var err error
		resp, err = t.base.RoundTrip(r)
		return err
	})
	return resp, err
}
