package command

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes start at 1 to avoid clashing with parsly.EOF.
const (
	whitespaceCode = iota + 1
	letterCode
	integerCode
	wordCode
	textCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	letterToken     = parsly.NewToken(letterCode, "Command", &letterMatcher{})
	integerToken    = parsly.NewToken(integerCode, "Integer", &integerMatcher{})
	wordToken       = parsly.NewToken(wordCode, "Word", &wordMatcher{})
	textToken       = parsly.NewToken(textCode, "Text", &textMatcher{})
)

// letterMatcher matches one ASCII letter standing alone.
type letterMatcher struct{}

func (m *letterMatcher) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	if pos >= cursor.InputSize || !isLetter(cursor.Input[pos]) {
		return 0
	}
	if !isBoundary(cursor, pos+1) {
		return 0
	}
	return 1
}

// integerMatcher matches an optionally signed decimal number.
type integerMatcher struct{}

func (m *integerMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	i := pos
	if i < size && (input[i] == '-' || input[i] == '+') {
		i++
	}
	digits := 0
	for ; i < size && isDigit(input[i]); i++ {
		digits++
	}
	if digits == 0 || !isBoundary(cursor, i) {
		return 0
	}
	return i - pos
}

// wordMatcher matches a run of non-whitespace bytes.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize && !isSpace(cursor.Input[i]); i++ {
		matched++
	}
	return matched
}

// textMatcher matches the remainder of the line without trailing whitespace.
type textMatcher struct{}

func (m *textMatcher) Match(cursor *parsly.Cursor) int {
	end := cursor.InputSize
	for end > cursor.Pos && isSpace(cursor.Input[end-1]) {
		end--
	}
	return end - cursor.Pos
}

func isBoundary(cursor *parsly.Cursor, pos int) bool {
	return pos >= cursor.InputSize || isSpace(cursor.Input[pos])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
