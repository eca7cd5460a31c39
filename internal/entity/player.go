package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	// WinnerDraw marks a round or match that ended without a winner.
	WinnerDraw = "draw"
)

// Avatars is the fixed set a player may pick from. Each avatar is unique
// within a match.
var Avatars = []string{"cyborg", "dwarf", "prime"}

type Player struct {
	Username  string `json:"username"`
	Mark      string `json:"mark"`
	Avatar    string `json:"avatar"`
	Wins      int    `json:"wins"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

func NewPlayer(username, mark, avatar string, host bool) *Player {
	return &Player{
		Username: username,
		Mark:     mark,
		Avatar:   avatar,
		IsHost:   host,
	}
}

func IsValidMark(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

func IsValidAvatar(avatar string) bool {
	for _, a := range Avatars {
		if a == avatar {
			return true
		}
	}

	return false
}

// OppositeMark returns the other player's symbol.
func OppositeMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
