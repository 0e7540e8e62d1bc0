package pattern

// Parser is a recursive-descent parser over the tokens of one path
// expression.
//
//	path     := hop hop*
//	hop      := '<' nameRule | '>'? nameRule
//	nameRule := word | regex
type Parser struct {
	input   string
	tokens  []Token
	current int
}

// NewParser lexes input and returns a parser positioned on its first token.
func NewParser(input string) (*Parser, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	return &Parser{input: input, tokens: tokens}, nil
}

// ParsePath parses a complete path expression into a matcher.
func ParsePath(input string) (Matcher, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// Parse parses the whole input as a path. All tokens must be consumed.
func (p *Parser) Parse() (Matcher, error) {
	if p.peek().Type == TokenEOF {
		return nil, newParseError(p.input, 0, "", "empty path expression")
	}

	m, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, newParseError(p.input, tok.Pos, p.input[tok.Pos:], "unexpected trailing input")
	}
	return m, nil
}

func (p *Parser) parsePath() (Matcher, error) {
	first, err := p.parseHop()
	if err != nil {
		return nil, err
	}

	hops := []Matcher{first}
	for p.startsHop() {
		hop, err := p.parseHop()
		if err != nil {
			return nil, err
		}
		hops = append(hops, hop)
	}
	return NewPath(hops...), nil
}

func (p *Parser) parseHop() (*Hop, error) {
	dir := Outgoing
	switch p.peek().Type {
	case TokenIncoming:
		dir = Incoming
		p.next()
	case TokenOutgoing:
		p.next()
	}

	label, err := p.parseNameRule()
	if err != nil {
		return nil, err
	}
	return NewHop(label, dir), nil
}

func (p *Parser) parseNameRule() (LabelMatcher, error) {
	tok := p.next()
	switch tok.Type {
	case TokenWord:
		return ExactLabel{Label: tok.Value}, nil

	case TokenRegex:
		label, err := NewRegexLabel(tok.Value)
		if err != nil {
			return nil, newParseError(p.input, tok.Pos, "/"+tok.Value+"/", "invalid regular expression: %v", err)
		}
		return label, nil

	case TokenEOF:
		prev := p.tokens[max(p.current-2, 0)]
		return nil, newParseError(p.input, tok.Pos, prev.Value, "expected a label after %q", prev.Value)

	default:
		return nil, newParseError(p.input, tok.Pos, p.input[tok.Pos:], "expected a label, found %s", tok.Type)
	}
}

// startsHop reports whether the current token can begin a hop.
func (p *Parser) startsHop() bool {
	switch p.peek().Type {
	case TokenWord, TokenRegex, TokenOutgoing, TokenIncoming:
		return true
	default:
		return false
	}
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.input)}
	}
	return p.tokens[p.current]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}
