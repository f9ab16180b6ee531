package game

// Callback tokens carried by the inline keyboard buttons.
const (
	TokenClaimX = "player_x"
	TokenClaimO = "player_o"
)

// Input is a parsed player action.
type Input interface {
	isInput()
}

// Claim asks to play for Role.
type Claim struct {
	Role Role
}

// Move asks to mark Cell.
type Move struct {
	Cell int
}

// Unrecognized carries a token that is neither a claim nor a move.
type Unrecognized struct {
	Token string
}

func (Claim) isInput()        {}
func (Move) isInput()         {}
func (Unrecognized) isInput() {}

// ParseInput maps a callback token to an Input. Cell tokens are single digits 0-8.
func ParseInput(token string) Input {
	switch token {
	case TokenClaimX:
		return Claim{Role: RoleX}
	case TokenClaimO:
		return Claim{Role: RoleO}
	}
	if len(token) == 1 && token[0] >= '0' && token[0] <= '8' {
		return Move{Cell: int(token[0] - '0')}
	}
	return Unrecognized{Token: token}
}

// Valid reports whether in passes the boundary pre-check.
func Valid(in Input) bool {
	switch v := in.(type) {
	case Claim:
		return v.Role == RoleX || v.Role == RoleO
	case Move:
		return v.Cell >= 0 && v.Cell < Size
	}
	return false
}

// ClaimToken is the callback token for claiming r.
func ClaimToken(r Role) string {
	if r == RoleO {
		return TokenClaimO
	}
	return TokenClaimX
}

// CellToken is the callback token for pressing cell i.
func CellToken(i int) string {
	return string(rune('0' + i))
}
