package session

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// Mode selects which sides are automated.
type Mode string

const (
	HumanVsHuman Mode = "human_vs_human"
	HumanVsBot   Mode = "human_vs_bot"
	BotVsBot     Mode = "bot_vs_bot"
)

// ParseMode accepts the canonical names and the short forms hh, hb, bb.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hh", "pvp", string(HumanVsHuman):
		return HumanVsHuman, nil
	case "hb", "bot", "", string(HumanVsBot):
		return HumanVsBot, nil
	case "bb", "auto", string(BotVsBot):
		return BotVsBot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) valid() bool {
	return m == HumanVsHuman || m == HumanVsBot || m == BotVsBot
}

// State is the controller state derived from a Session.
type State string

const (
	StateAwaitingHuman     State = "awaiting_human"
	StateAwaitingAutomated State = "awaiting_automated"
	StateReviewing         State = "reviewing"
	StateGameOver          State = "game_over"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Options configure a new game. Zero values pick the defaults: HumanVsBot,
// the controller's default difficulty and a human playing Black.
type Options struct {
	Mode       Mode
	Difficulty int
	HumanColor othello.Player
}

func (o Options) normalize(defaultDifficulty int) (Options, error) {
	if o.Mode == "" {
		o.Mode = HumanVsBot
	}
	if !o.Mode.valid() {
		return o, fmt.Errorf("%w: %q", ErrInvalidMode, o.Mode)
	}
	if o.Difficulty == 0 {
		o.Difficulty = defaultDifficulty
	}
	if o.Difficulty < MinDifficulty || o.Difficulty > MaxDifficulty {
		return o, fmt.Errorf("%w: %d", ErrInvalidDifficulty, o.Difficulty)
	}
	if o.HumanColor == 0 {
		o.HumanColor = othello.Black
	}
	if !o.HumanColor.Valid() {
		return o, fmt.Errorf("session: invalid human colour %d", o.HumanColor)
	}
	return o, nil
}
