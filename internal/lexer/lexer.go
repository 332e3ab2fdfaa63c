package lexer

import (
	"fmt"
	"iter"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/serpent/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // zero-based line of ch
	column       int  // zero-based column of ch
	started      bool
	atEOF        bool

	peeked   *token.Token
	comments []token.Range
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.atEOF {
		return
	}
	if l.started {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
	}
	l.started = true

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.atEOF = true
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

// Next consumes and returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() token.Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	return l.scan()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return *l.peeked
}

// All yields tokens lazily up to and including the first EOF or INVALID token.
func (l *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) {
				return
			}
			if tok.Kind == token.EOF || tok.Kind == token.INVALID {
				return
			}
		}
	}
}

// Comments returns the ranges of the comments skipped so far.
func (l *Lexer) Comments() []token.Range {
	return l.comments
}

// Tokens collects All into a slice.
func (l *Lexer) Tokens() []token.Token {
	var out []token.Token
	for tok := range l.All() {
		out = append(out, tok)
	}
	return out
}

func (l *Lexer) scan() token.Token {
	l.skipWhitespace()

	start := l.pos()
	switch {
	case l.ch == 0 && l.atEOF:
		return token.Token{Kind: token.EOF, Range: token.Range{Start: start, End: start}}
	case l.ch == '\n':
		l.readChar()
		return token.Token{Text: "\n", Kind: token.NL, Range: token.Range{Start: start, End: token.Position{Line: start.Line, Column: start.Column + 1}}}
	case isDigit(l.ch):
		return l.readNumber(start)
	case isLetter(l.ch):
		return l.readIdentifier(start)
	case l.ch == '"':
		return l.readString(start)
	}

	startOffset := l.position
	var kind token.Kind
	switch l.ch {
	case '+':
		kind = l.withAssign(token.PLUS, token.ASSIGN_PLUS)
	case '-':
		kind = l.withAssign(token.MINUS, token.ASSIGN_MINUS)
	case '*':
		kind = l.withAssign(token.MULT, token.ASSIGN_MULT)
	case '/':
		kind = l.withAssign(token.DIV, token.ASSIGN_DIV)
	case '%':
		kind = l.withAssign(token.REM, token.ASSIGN_REM)
	case '=':
		kind = l.withAssign(token.ASSIGN, token.EQUALS)
	case '>':
		kind = l.withAssign(token.GREATER, token.GREATER_OR_EQUALS)
	case '<':
		kind = l.withAssign(token.LESS, token.LESS_OR_EQUALS)
	case '!':
		if l.peekChar() != '=' {
			l.readChar()
			return l.invalid(start, "invalid character '!'")
		}
		l.readChar()
		kind = token.DIFF
	case '(':
		kind = token.LEFT_PAREN
	case ')':
		kind = token.RIGHT_PAREN
	case '[':
		kind = token.LEFT_BRACKET
	case ']':
		kind = token.RIGHT_BRACKET
	case '{':
		kind = token.LEFT_BRACE
	case '}':
		kind = token.RIGHT_BRACE
	case ':':
		kind = token.COLON
	case ',':
		kind = token.COMMA
	case '.':
		kind = token.DOT
	default:
		ch := l.ch
		l.readChar()
		return l.invalid(start, fmt.Sprintf("invalid character %q", ch))
	}
	l.readChar()
	return token.Token{Text: l.input[startOffset:l.position], Kind: kind, Range: token.Range{Start: start, End: l.pos()}}
}

// withAssign resolves an operator that may be followed by '=' with one char of lookahead.
// On the compound form the first character is consumed here.
func (l *Lexer) withAssign(single, compound token.Kind) token.Kind {
	if l.peekChar() == '=' {
		l.readChar()
		return compound
	}
	return single
}

func (l *Lexer) invalid(start token.Position, reason string) token.Token {
	return token.Token{Text: reason, Kind: token.INVALID, Range: token.Range{Start: start, End: l.pos()}}
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Text: l.input[position:l.position], Kind: token.NUM, Range: token.Range{Start: start, End: l.pos()}}
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	ident := l.input[position:l.position]
	return token.Token{Text: ident, Kind: token.LookupIdent(ident), Range: token.Range{Start: start, End: l.pos()}}
}

// readString reads a "-delimited string. Only \n, \" and \\ are valid escapes,
// and a string may not cross a line.
func (l *Lexer) readString(start token.Position) token.Token {
	var result []rune
	l.readChar() // opening "
	for {
		switch l.ch {
		case '"':
			l.readChar()
			return token.Token{Text: string(result), Kind: token.STR, Range: token.Range{Start: start, End: l.pos()}}
		case '\n':
			return l.invalid(start, "unterminated string")
		case 0:
			if l.atEOF {
				return l.invalid(start, "unterminated string")
			}
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case '"':
				result = append(result, '"')
			case '\\':
				result = append(result, '\\')
			default:
				if l.ch == '\n' || l.atEOF {
					return l.invalid(start, "unterminated string")
				}
				bad := l.ch
				l.readChar()
				return l.invalid(start, fmt.Sprintf("invalid escape sequence \\%c", bad))
			}
			l.readChar()
			continue
		}
		result = append(result, l.ch)
		l.readChar()
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			start := l.pos()
			for l.ch != '\n' && !l.atEOF {
				l.readChar()
			}
			l.comments = append(l.comments, token.Range{Start: start, End: l.pos()})
			continue
		}
		return
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
