package game

// Notices sent back to the player that pressed a button.
const (
	MsgNowPlaying     = "Now you are playing for "
	MsgRoleTaken      = "There is somebody who already plays for "
	MsgAlreadyPlaying = "You are already playing!"
	MsgNotYourTurn    = "Hey, it is not your turn!"
	MsgWhat           = "What are you trying to do?"
	MsgFinished       = "Game is finished!"
	MsgCellPlayed     = "That cell is already played! Try another one."
	MsgWon            = "Congratulations! You won!"
	MsgDraw           = "Draw!"
)

// Outcome names the branch a transition took.
type Outcome string

const (
	OutcomeClaimed        Outcome = "claimed"
	OutcomeStarted        Outcome = "started"
	OutcomeMoved          Outcome = "moved"
	OutcomeWon            Outcome = "won"
	OutcomeDraw           Outcome = "draw"
	OutcomeAlreadyPlaying Outcome = "already_playing"
	OutcomeRoleTaken      Outcome = "role_taken"
	OutcomeNotYourTurn    Outcome = "not_your_turn"
	OutcomeCellPlayed     Outcome = "cell_played"
	OutcomeUnexpected     Outcome = "unexpected_input"
	OutcomeGameOver       Outcome = "game_over"
)

// Accepted reports whether the outcome mutated the state.
func (o Outcome) Accepted() bool {
	switch o {
	case OutcomeClaimed, OutcomeStarted, OutcomeMoved, OutcomeWon, OutcomeDraw:
		return true
	}
	return false
}

// Event is one button press by Requester.
type Event struct {
	ID        string
	Requester Player
	Input     Input
}

// Result is what Process decided for an event.
type Result struct {
	Intents []Intent
	Changed bool
	Outcome Outcome
}

// Process validates ev against s, applies the transition in place and returns
// the intents the transport should execute. Rejections never mutate s.
func Process(s *State, ev Event) Result {
	switch s.Status {
	case WaitingForStart:
		return processClaim(s, ev)
	case WaitingForPlayer:
		return processMove(s, ev)
	}
	return reject(ev, OutcomeGameOver, MsgFinished)
}

func processClaim(s *State, ev Event) Result {
	claim, ok := ev.Input.(Claim)
	if !ok {
		// Board buttons only exist once both slots are filled.
		return reject(ev, OutcomeUnexpected, MsgAlreadyPlaying)
	}
	if _, playing := s.RoleOf(ev.Requester.ID); playing {
		return reject(ev, OutcomeAlreadyPlaying, MsgAlreadyPlaying)
	}
	if s.Player(claim.Role) != nil {
		return reject(ev, OutcomeRoleTaken, MsgRoleTaken+claim.Role.String())
	}

	s.setPlayer(claim.Role, ev.Requester)
	res := Result{
		Changed: true,
		Outcome: OutcomeClaimed,
		Intents: []Intent{Acknowledge{EventID: ev.ID, Text: MsgNowPlaying + claim.Role.String()}},
	}
	if s.PlayerX != nil && s.PlayerO != nil {
		s.Status = WaitingForPlayer
		res.Outcome = OutcomeStarted
		res.Intents = append(res.Intents,
			RenderText{GameID: s.ID, Text: s.StatusText()},
			RenderBoard{GameID: s.ID, Board: s.Board},
		)
		return res
	}
	res.Intents = append(res.Intents, RenderClaimPrompt{GameID: s.ID, Remaining: claim.Role.Other()})
	return res
}

func processMove(s *State, ev Event) Result {
	move, ok := ev.Input.(Move)
	if !ok || !Valid(move) {
		return reject(ev, OutcomeUnexpected, MsgWhat)
	}
	current, err := s.CurrentPlayer()
	if err != nil || current.ID != ev.Requester.ID {
		return reject(ev, OutcomeNotYourTurn, MsgNotYourTurn)
	}
	if s.Board[move.Cell] != Empty {
		return reject(ev, OutcomeCellPlayed, MsgCellPlayed)
	}

	s.Board[move.Cell] = s.CurrentRole().Mark()
	s.Turn++
	res := Result{
		Changed: true,
		Outcome: OutcomeMoved,
		Intents: []Intent{RenderBoard{GameID: s.ID, Board: s.Board}},
	}

	switch {
	case s.Board.Wins(move.Cell):
		winner := *current
		s.Winner = &winner
		s.Status = Completed
		res.Outcome = OutcomeWon
		res.Intents = append(res.Intents,
			Acknowledge{EventID: ev.ID, Text: MsgWon},
			RenderText{GameID: s.ID, Text: s.StatusText()},
		)
	case s.Board.Full():
		s.Status = Finished
		res.Outcome = OutcomeDraw
		res.Intents = append(res.Intents,
			Acknowledge{EventID: ev.ID, Text: MsgDraw},
			RenderText{GameID: s.ID, Text: s.StatusText()},
		)
	}
	return res
}

func reject(ev Event, o Outcome, text string) Result {
	return Result{
		Outcome: o,
		Intents: []Intent{Acknowledge{EventID: ev.ID, Text: text}},
	}
}
