package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER   // table_name, column_name
	QUOTED_IDENT // `column name`
	STRING       // 'value' or "value"
	NUMBER       // 123, 1.23

	// Keywords
	SELECT
	FROM
	WHERE
	INSERT
	INTO
	VALUES
	UPDATE
	SET
	DELETE
	AND
	OR
	NOT
	NULL
	TRUE
	FALSE
	LIKE
	IN
	IS
	BETWEEN

	// Operators & Punctuation
	ASTERISK      // *
	COMMA         // ,
	PAREN_OPEN    // (
	PAREN_CLOSE   // )
	EQUALS        // =
	SEMICOLON     // ;
	MINUS         // -
	PLUS          // +
	SLASH         // /
	DOT           // .
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	NOT_EQUAL     // != or <>
	OPERATOR      // any other punctuation (%, |, ...)
)

var keywords = map[string]TokenType{
	"SELECT":  SELECT,
	"FROM":    FROM,
	"WHERE":   WHERE,
	"INSERT":  INSERT,
	"INTO":    INTO,
	"VALUES":  VALUES,
	"UPDATE":  UPDATE,
	"SET":     SET,
	"DELETE":  DELETE,
	"AND":     AND,
	"OR":      OR,
	"NOT":     NOT,
	"NULL":    NULL,
	"TRUE":    TRUE,
	"FALSE":   FALSE,
	"LIKE":    LIKE,
	"IN":      IN,
	"IS":      IS,
	"BETWEEN": BETWEEN,
}

var names = map[TokenType]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	QUOTED_IDENT:  "QUOTED_IDENT",
	STRING:        "STRING",
	NUMBER:        "NUMBER",
	ASTERISK:      "*",
	COMMA:         ",",
	PAREN_OPEN:    "(",
	PAREN_CLOSE:   ")",
	EQUALS:        "=",
	SEMICOLON:     ";",
	MINUS:         "-",
	PLUS:          "+",
	SLASH:         "/",
	DOT:           ".",
	LESS_THAN:     "<",
	GREATER_THAN:  ">",
	LESS_EQUAL:    "<=",
	GREATER_EQUAL: ">=",
	NOT_EQUAL:     "!=",
	OPERATOR:      "OPERATOR",
}

func init() {
	for word, tt := range keywords {
		names[tt] = word
	}
}

func (t TokenType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word
func (t TokenType) IsKeyword() bool {
	return t >= SELECT && t <= BETWEEN
}

// Token is one lexeme. Pos and End are byte offsets into the input, so the
// parser can recover raw source text spanning several tokens.
type Token struct {
	Type    TokenType
	Literal string // for STRING and QUOTED_IDENT: the content without quotes
	Quote   byte   // quote character for STRING and QUOTED_IDENT
	Pos     int
	End     int
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start, line, col := l.position, l.line, l.column
	tok := Token{Pos: start, Line: line, Column: col}

	switch l.ch {
	case '*':
		tok.Type = ASTERISK
	case ',':
		tok.Type = COMMA
	case '(':
		tok.Type = PAREN_OPEN
	case ')':
		tok.Type = PAREN_CLOSE
	case '=':
		tok.Type = EQUALS
	case ';':
		tok.Type = SEMICOLON
	case '-':
		tok.Type = MINUS
	case '+':
		tok.Type = PLUS
	case '/':
		tok.Type = SLASH
	case '.':
		tok.Type = DOT
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type = LESS_EQUAL
		case '>':
			l.readChar()
			tok.Type = NOT_EQUAL
		default:
			tok.Type = LESS_THAN
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = GREATER_EQUAL
		} else {
			tok.Type = GREATER_THAN
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type = NOT_EQUAL
		} else {
			tok.Type = OPERATOR
		}
	case '\'', '"':
		tok.Type = STRING
		tok.Quote = l.ch
		lit, ok := l.readQuoted(l.ch)
		if !ok {
			tok.Type = ILLEGAL
		}
		tok.Literal = lit
		tok.End = l.position
		return tok
	case '`':
		tok.Type = QUOTED_IDENT
		tok.Quote = l.ch
		lit, ok := l.readQuoted(l.ch)
		if !ok {
			tok.Type = ILLEGAL
		}
		tok.Literal = lit
		tok.End = l.position
		return tok
	case 0:
		tok.Type = EOF
		tok.End = start
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			tok.End = l.position
			return tok
		} else if isDigit(l.ch) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			tok.End = l.position
			return tok
		}
		tok.Type = OPERATOR
	}

	l.readChar()
	tok.End = l.position
	tok.Literal = l.input[start:tok.End]
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	// Support simple floats
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readQuoted consumes a quoted run and returns its content. There is no
// escaping: the next quote character closes the run. ok is false when the
// input ends first.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == quote || l.ch == 0 {
			break
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
	}
	lit := l.input[position:l.position]

	if l.ch != quote {
		return lit, false
	}
	// Consume the closing quote
	l.readChar()
	return lit, true
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

// isLetter accepts ASCII letters, underscore and any byte of a multi-byte
// UTF-8 sequence, so non-ASCII sheet and column names lex as identifiers.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Helper to tokenize entire string at once
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("unterminated quoted text at line %d, col %d", tok.Line, tok.Column)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
