package pattern

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType defines the type of a token
type TokenType int

const (
	TokenEOF      TokenType = iota
	TokenWord                // nsubj
	TokenRegex               // /^nmod_/, Value holds the body
	TokenOutgoing            // >
	TokenIncoming            // <
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenWord:
		return "Word"
	case TokenRegex:
		return "Regex"
	case TokenOutgoing:
		return "Outgoing"
	case TokenIncoming:
		return "Incoming"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the input
}

// Lex splits a path expression into tokens. Whitespace separates tokens
// and is otherwise ignored.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	i := 0

	for i < len(input) {
		c := input[i]
		switch {
		case isWhitespace(c):
			i++

		case c == '>':
			tokens = append(tokens, Token{Type: TokenOutgoing, Value: ">", Pos: i})
			i++

		case c == '<':
			tokens = append(tokens, Token{Type: TokenIncoming, Value: "<", Pos: i})
			i++

		case c == '/':
			tok, next, err := lexRegex(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		case isWordChar(c):
			start := i
			for i < len(input) && isWordChar(input[i]) {
				i++
			}
			tokens = append(tokens, Token{Type: TokenWord, Value: input[start:i], Pos: start})

		default:
			r, _ := utf8.DecodeRuneInString(input[i:])
			return nil, newParseError(input, i, input[i:], "unexpected character %q", r)
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(input)})
	return tokens, nil
}

// lexRegex scans a slash-delimited regular expression starting at the
// opening slash. "\/" inside the body stands for a literal slash; other
// escape sequences are kept verbatim for the regexp package.
func lexRegex(input string, start int) (Token, int, error) {
	var body strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		if c == '\\' && i+1 < len(input) {
			if input[i+1] == '/' {
				body.WriteByte('/')
			} else {
				body.WriteByte(c)
				body.WriteByte(input[i+1])
			}
			i += 2
			continue
		}
		if c == '/' {
			if body.Len() == 0 {
				return Token{}, 0, newParseError(input, start, input[start:i+1], "empty regular expression")
			}
			return Token{Type: TokenRegex, Value: body.String(), Pos: start}, i + 1, nil
		}
		body.WriteByte(c)
		i++
	}
	return Token{}, 0, newParseError(input, start, input[start:], "regular expression is not terminated by '/'")
}

func isWordChar(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWhitespace(c byte) bool {
	return unicode.IsSpace(rune(c))
}
