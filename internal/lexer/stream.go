package lexer

import "github.com/funvibe/serpent/internal/token"

// Stream replays an already lexed token slice with the same Next/Peek
// contract as Lexer. Once exhausted it keeps returning the last token,
// which is EOF or INVALID for slices produced by Tokens.
type Stream struct {
	tokens []token.Token
	pos    int
}

func NewStream(tokens []token.Token) *Stream {
	return &Stream{tokens: tokens}
}

func (s *Stream) Next() token.Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *Stream) Peek() token.Token {
	if len(s.tokens) == 0 {
		return token.Token{Kind: token.EOF}
	}
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return s.tokens[len(s.tokens)-1]
}
