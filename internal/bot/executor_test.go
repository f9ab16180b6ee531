package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"

	"github.com/m3rciful/tictactoe-bot/internal/game"

	tele "gopkg.in/telebot.v4"
)

type call struct {
	kind   string
	gameID string
	text   string
	markup *tele.ReplyMarkup
}

type fakeTransport struct {
	calls   []call
	editErr error
}

func (f *fakeTransport) Answer(text string) error {
	f.calls = append(f.calls, call{kind: "answer", text: text})
	return nil
}

func (f *fakeTransport) EditText(id, text string, m *tele.ReplyMarkup) error {
	f.calls = append(f.calls, call{kind: "text", gameID: id, text: text, markup: m})
	return f.editErr
}

func (f *fakeTransport) EditMarkup(id string, m *tele.ReplyMarkup) error {
	f.calls = append(f.calls, call{kind: "markup", gameID: id, markup: m})
	return f.editErr
}

func buttonData(m *tele.ReplyMarkup) [][]string {
	out := make([][]string, len(m.InlineKeyboard))
	for i, row := range m.InlineKeyboard {
		for _, b := range row {
			out[i] = append(out[i], b.Unique+"|"+b.Data)
		}
	}
	return out
}

func TestExecuteClaimPrompt(t *testing.T) {
	f := &fakeTransport{}
	err := Execute(context.Background(), f, []game.Intent{
		game.Acknowledge{EventID: "cb", Text: game.MsgNowPlaying + game.RoleX.String()},
		game.RenderClaimPrompt{GameID: "g1", Remaining: game.RoleO},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(f.calls) != 2 || f.calls[0].kind != "answer" || f.calls[1].kind != "markup" {
		t.Fatalf("calls = %+v", f.calls)
	}
	data := buttonData(f.calls[1].markup)
	if len(data) != 1 || len(data[0]) != 1 || data[0][0] != "ttt|player_o" {
		t.Fatalf("claim keyboard = %q", data)
	}
}

func TestExecuteTextCarriesBoard(t *testing.T) {
	s := game.New("g1")
	s.Board[4] = game.X
	f := &fakeTransport{}
	err := Execute(context.Background(), f, []game.Intent{
		game.RenderBoard{GameID: "g1", Board: s.Board},
		game.Acknowledge{EventID: "cb", Text: game.MsgWon},
		game.RenderText{GameID: "g1", Text: "done"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("calls = %+v", f.calls)
	}
	if f.calls[0].kind != "answer" || f.calls[0].text != game.MsgWon {
		t.Fatalf("first call = %+v", f.calls[0])
	}
	edit := f.calls[1]
	if edit.kind != "text" || edit.text != "done" || edit.markup == nil {
		t.Fatalf("edit = %+v", edit)
	}
	kb := edit.markup.InlineKeyboard
	if len(kb) != 3 || len(kb[1]) != 3 || kb[1][1].Text != game.X.String() || kb[0][0].Text != emptyCellText {
		t.Fatalf("board keyboard = %+v", kb)
	}
}

func TestExecuteAnswersWithoutAck(t *testing.T) {
	f := &fakeTransport{}
	if err := Execute(context.Background(), f, []game.Intent{
		game.RenderBoard{GameID: "g1"},
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if f.calls[0].kind != "answer" || f.calls[0].text != "" {
		t.Fatalf("expected silent answer, got %+v", f.calls[0])
	}
}

func TestExecuteEditErrors(t *testing.T) {
	f := &fakeTransport{editErr: tele.ErrSameMessageContent}
	if err := Execute(context.Background(), f, []game.Intent{game.RenderBoard{GameID: "g1"}}); err != nil {
		t.Fatalf("not modified should be ignored: %v", err)
	}

	f = &fakeTransport{editErr: tele.ErrTrueResult}
	if err := Execute(context.Background(), f, []game.Intent{game.RenderText{GameID: "g1", Text: "done"}}); err != nil {
		t.Fatalf("true result should be success: %v", err)
	}

	boom := errors.New("boom")
	f = &fakeTransport{editErr: boom}
	if err := Execute(context.Background(), f, []game.Intent{game.RenderBoard{GameID: "g1"}}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

// botAPI answers every method like the Bot API does for inline message
// edits and callback answers.
func botAPI(t *testing.T) (*tele.Bot, func() []string) {
	t.Helper()
	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, path.Base(r.URL.Path))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	t.Cleanup(srv.Close)

	b, err := tele.NewBot(tele.Settings{URL: srv.URL, Token: "1:test", Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return b, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), methods...)
	}
}

func TestContextTransportInlineEdits(t *testing.T) {
	b, methods := botAPI(t)
	c := b.NewContext(tele.Update{Callback: &tele.Callback{
		ID:        "cb1",
		MessageID: "g1",
		Sender:    &tele.User{ID: 1},
		Data:      "\fttt|4",
	}})
	tr := contextTransport{c: c}

	s := game.New("g1")
	s.Board[4] = game.X
	err := Execute(context.Background(), tr, []game.Intent{
		game.Acknowledge{EventID: "cb1"},
		game.RenderBoard{GameID: "g1", Board: s.Board},
	})
	if err != nil {
		t.Fatalf("markup edit: %v", err)
	}

	err = Execute(context.Background(), tr, []game.Intent{
		game.Acknowledge{EventID: "cb1", Text: game.MsgWon},
		game.RenderBoard{GameID: "g1", Board: s.Board},
		game.RenderText{GameID: "g1", Text: "done"},
	})
	if err != nil {
		t.Fatalf("text edit: %v", err)
	}

	want := []string{"answerCallbackQuery", "editMessageReplyMarkup", "answerCallbackQuery", "editMessageText"}
	got := methods()
	if len(got) != len(want) {
		t.Fatalf("methods = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("methods = %q, want %q", got, want)
		}
	}
}

func TestInitialMarkup(t *testing.T) {
	data := buttonData(InitialMarkup())
	if len(data) != 2 || data[0][0] != "ttt|player_x" || data[1][0] != "ttt|player_o" {
		t.Fatalf("initial keyboard = %q", data)
	}
}
