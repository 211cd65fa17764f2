// Package command turns chat messages into table operations and posts the
// replies back to the room.
package command

import (
	"strings"
)

// Command names.
const (
	CmdHelp   = "help"
	CmdStart  = "start"
	CmdPlay   = "play"
	CmdUndo   = "undo"
	CmdRedo   = "redo"
	CmdStatus = "status"
	CmdMoves  = "moves"
)

// Command is one parsed chat command.
type Command struct {
	Name string
	Args []string
}

var aliases = map[string]string{
	"new":     CmdStart,
	"move":    CmdPlay,
	"back":    CmdUndo,
	"forward": CmdRedo,
	"board":   CmdStatus,
	"legal":   CmdMoves,
	"?":       CmdHelp,
}

// Parse reads text addressed to the bot with prefix. The bool is false when
// the text is not for the bot. A bare square such as "d3" is a play, and so
// is anything shaped like one ("z9", "9,9") so the room hears why it is bad.
func Parse(prefix, text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return Command{Name: CmdHelp}, true
	}
	name := strings.ToLower(fields[0])
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	switch name {
	case CmdHelp, CmdStart, CmdPlay, CmdUndo, CmdRedo, CmdStatus, CmdMoves:
		return Command{Name: name, Args: fields[1:]}, true
	}
	if looksLikeSquare(fields[0]) {
		return Command{Name: CmdPlay, Args: fields[:1]}, true
	}
	return Command{Name: name, Args: fields[1:]}, true
}

// looksLikeSquare matches a letter followed by digits or a "row,col" pair.
func looksLikeSquare(s string) bool {
	if r, c, ok := strings.Cut(s, ","); ok {
		return isDigits(strings.TrimSpace(r)) && isDigits(strings.TrimSpace(c))
	}
	if len(s) < 2 {
		return false
	}
	l := s[0] | 0x20
	return l >= 'a' && l <= 'z' && isDigits(s[1:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
