// Package game models a single tic-tac-toe round hosted by an inline message.
// It holds no I/O: callers load a State, run Process and persist the result.
package game

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNoPlayer is returned when the role whose turn it is has not been claimed.
var ErrNoPlayer = errors.New("game: no player")

// Cell is a single board position value.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// String renders the cell mark for status lines.
func (c Cell) String() string {
	switch c {
	case X:
		return "✖️"
	case O:
		return "⭕"
	default:
		return ""
	}
}

// MarshalText encodes the cell as "", "x" or "o".
func (c Cell) MarshalText() ([]byte, error) {
	switch c {
	case Empty:
		return []byte(""), nil
	case X:
		return []byte("x"), nil
	case O:
		return []byte("o"), nil
	}
	return nil, fmt.Errorf("game: invalid cell %d", c)
}

// UnmarshalText decodes the MarshalText form.
func (c *Cell) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "":
		*c = Empty
	case "x":
		*c = X
	case "o":
		*c = O
	default:
		return fmt.Errorf("game: invalid cell %q", b)
	}
	return nil
}

// Role is one of the two playable sides.
type Role uint8

const (
	RoleX Role = iota
	RoleO
)

// Mark returns the cell value written by the role.
func (r Role) Mark() Cell {
	if r == RoleO {
		return O
	}
	return X
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleO {
		return RoleX
	}
	return RoleO
}

func (r Role) String() string {
	return r.Mark().String()
}

// Status is the lifecycle stage of a round.
type Status int

const (
	WaitingForStart Status = iota
	WaitingForPlayer
	Completed
	Finished
)

var statusLines = [...]string{
	WaitingForStart:  "Waiting for start.",
	WaitingForPlayer: "Game is running.",
	Completed:        "Game is finished!",
	Finished:         "Game is finished!",
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == Completed || s == Finished
}

func (s Status) String() string {
	switch s {
	case WaitingForStart:
		return "waiting_for_start"
	case WaitingForPlayer:
		return "waiting_for_player"
	case Completed:
		return "completed"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Player identifies a participant by their Telegram account.
type Player struct {
	ID       int64  `json:"player_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Handle is the name shown in status lines.
func (p Player) Handle() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return p.Name
}

// State is the persisted snapshot of one round.
type State struct {
	ID      string  `json:"game_id"`
	Status  Status  `json:"status"`
	Board   Board   `json:"board"`
	PlayerX *Player `json:"player_x,omitempty"`
	PlayerO *Player `json:"player_o,omitempty"`
	Turn    int     `json:"step"`
	Winner  *Player `json:"winner,omitempty"`
}

// New returns a round waiting for both roles to be claimed.
func New(id string) *State {
	return &State{ID: id, Status: WaitingForStart}
}

// Player returns the player holding role, or nil.
func (s *State) Player(r Role) *Player {
	if r == RoleO {
		return s.PlayerO
	}
	return s.PlayerX
}

func (s *State) setPlayer(r Role, p Player) {
	if r == RoleO {
		s.PlayerO = &p
		return
	}
	s.PlayerX = &p
}

// RoleOf reports which role userID holds in this round.
func (s *State) RoleOf(userID int64) (Role, bool) {
	if s.PlayerX != nil && s.PlayerX.ID == userID {
		return RoleX, true
	}
	if s.PlayerO != nil && s.PlayerO.ID == userID {
		return RoleO, true
	}
	return RoleX, false
}

// CurrentRole derives whose turn it is from the turn parity.
func (s *State) CurrentRole() Role {
	if s.Turn%2 == 0 {
		return RoleX
	}
	return RoleO
}

// CurrentPlayer returns the player to move, or ErrNoPlayer when that slot is empty.
func (s *State) CurrentPlayer() (*Player, error) {
	p := s.Player(s.CurrentRole())
	if p == nil {
		return nil, ErrNoPlayer
	}
	return p, nil
}

// StatusText renders the message text shown above the board.
func (s *State) StatusText() string {
	var b strings.Builder
	if int(s.Status) >= 0 && int(s.Status) < len(statusLines) {
		b.WriteString(statusLines[s.Status])
	}
	b.WriteByte('\n')
	for _, r := range []Role{RoleX, RoleO} {
		if p := s.Player(r); p != nil {
			fmt.Fprintf(&b, "%s plays for %s\n", p.Handle(), r)
		}
	}
	switch s.Status {
	case Completed:
		if s.Winner != nil {
			fmt.Fprintf(&b, "\n%s won the round!", s.Winner.Name)
		}
	case Finished:
		b.WriteString("\nDraw!")
	}
	return b.String()
}

// BoardView yields every cell with its index in row-major order.
func (s *State) BoardView() iter.Seq2[int, Cell] {
	return s.Board.View()
}
