package command

import "strings"

const (
	seeMorePadding = 500
	zeroWidthSpace = "\u200b"
)

// seeMore folds everything after the first line behind KakaoTalk's
// "see more" control by padding with zero-width spaces. Single-line text is
// returned as is.
func seeMore(text string) string {
	text = strings.TrimSpace(text)
	head, body, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimSpace(body) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + seeMorePadding*len(zeroWidthSpace) + 1)
	b.WriteString(strings.TrimSpace(head))
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(strings.TrimLeft(body, "\r\n"))
	return b.String()
}
