package token

import "fmt"

type Kind int

const (
	INVALID Kind = iota
	EOF
	NL

	NUM
	STR
	ID

	// Keywords
	TRUE
	FALSE
	NOT
	AND
	OR
	SELF
	NONE
	IF
	ELIF
	ELSE
	IN
	DO
	WHILE
	RETURN
	DEF
	CLASS
	IMPORT
	FROM
	PASS

	// Operators
	PLUS
	MINUS
	MULT
	DIV
	REM

	ASSIGN
	ASSIGN_PLUS
	ASSIGN_MINUS
	ASSIGN_MULT
	ASSIGN_DIV
	ASSIGN_REM

	EQUALS
	DIFF
	GREATER
	GREATER_OR_EQUALS
	LESS
	LESS_OR_EQUALS

	// Delimiters
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
	LEFT_BRACE
	RIGHT_BRACE
	COLON
	COMMA
	DOT
)

var kindNames = [...]string{
	INVALID:           "INVALID",
	EOF:               "EOF",
	NL:                "NL",
	NUM:               "NUM",
	STR:               "STR",
	ID:                "ID",
	TRUE:              "TRUE",
	FALSE:             "FALSE",
	NOT:               "NOT",
	AND:               "AND",
	OR:                "OR",
	SELF:              "SELF",
	NONE:              "NONE",
	IF:                "IF",
	ELIF:              "ELIF",
	ELSE:              "ELSE",
	IN:                "IN",
	DO:                "DO",
	WHILE:             "WHILE",
	RETURN:            "RETURN",
	DEF:               "DEF",
	CLASS:             "CLASS",
	IMPORT:            "IMPORT",
	FROM:              "FROM",
	PASS:              "PASS",
	PLUS:              "PLUS",
	MINUS:             "MINUS",
	MULT:              "MULT",
	DIV:               "DIV",
	REM:               "REM",
	ASSIGN:            "ASSIGN",
	ASSIGN_PLUS:       "ASSIGN_PLUS",
	ASSIGN_MINUS:      "ASSIGN_MINUS",
	ASSIGN_MULT:       "ASSIGN_MULT",
	ASSIGN_DIV:        "ASSIGN_DIV",
	ASSIGN_REM:        "ASSIGN_REM",
	EQUALS:            "EQUALS",
	DIFF:              "DIFF",
	GREATER:           "GREATER",
	GREATER_OR_EQUALS: "GREATER_OR_EQUALS",
	LESS:              "LESS",
	LESS_OR_EQUALS:    "LESS_OR_EQUALS",
	LEFT_PAREN:        "LEFT_PAREN",
	RIGHT_PAREN:       "RIGHT_PAREN",
	LEFT_BRACKET:      "LEFT_BRACKET",
	RIGHT_BRACKET:     "RIGHT_BRACKET",
	LEFT_BRACE:        "LEFT_BRACE",
	RIGHT_BRACE:       "RIGHT_BRACE",
	COLON:             "COLON",
	COMMA:             "COMMA",
	DOT:               "DOT",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "??"
}

var keywords = map[string]Kind{
	"True":   TRUE,
	"False":  FALSE,
	"not":    NOT,
	"and":    AND,
	"or":     OR,
	"self":   SELF,
	"None":   NONE,
	"if":     IF,
	"elif":   ELIF,
	"else":   ELSE,
	"in":     IN,
	"do":     DO,
	"while":  WHILE,
	"return": RETURN,
	"def":    DEF,
	"class":  CLASS,
	"import": IMPORT,
	"from":   FROM,
	"pass":   PASS,
}

// LookupIdent returns the keyword kind for ident, or ID.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return ID
}

// Token is a lexeme tagged with its kind and the exact source span it occupied.
// For STR tokens Text is the unescaped content; for INVALID tokens it is the reason.
type Token struct {
	Text  string
	Kind  Kind
	Range Range
}

func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("(%q, %s, %s)", t.Text, t.Kind, t.Range)
}
