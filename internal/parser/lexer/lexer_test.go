package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `UPDATE employees SET salary = 85000 WHERE name = 'Alice';
INSERT INTO items (name, price) VALUES ("apple", -1.23);`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{UPDATE, "UPDATE"},
		{IDENTIFIER, "employees"},
		{SET, "SET"},
		{IDENTIFIER, "salary"},
		{EQUALS, "="},
		{NUMBER, "85000"},
		{WHERE, "WHERE"},
		{IDENTIFIER, "name"},
		{EQUALS, "="},
		{STRING, "Alice"},
		{SEMICOLON, ";"},
		{INSERT, "INSERT"},
		{INTO, "INTO"},
		{IDENTIFIER, "items"},
		{PAREN_OPEN, "("},
		{IDENTIFIER, "name"},
		{COMMA, ","},
		{IDENTIFIER, "price"},
		{PAREN_CLOSE, ")"},
		{VALUES, "VALUES"},
		{PAREN_OPEN, "("},
		{STRING, "apple"},
		{COMMA, ","},
		{MINUS, "-"},
		{NUMBER, "1.23"},
		{PAREN_CLOSE, ")"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenSpans(t *testing.T) {
	input := "DELETE FROM `Sales 2024` WHERE id = 7"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	quoted := tokens[2]
	if quoted.Type != QUOTED_IDENT {
		t.Fatalf("expected QUOTED_IDENT, got %s", quoted.Type)
	}
	if quoted.Literal != "Sales 2024" {
		t.Errorf("expected content 'Sales 2024', got %q", quoted.Literal)
	}
	if got := input[quoted.Pos:quoted.End]; got != "`Sales 2024`" {
		t.Errorf("span mismatch: %q", got)
	}

	last := tokens[len(tokens)-1]
	if got := input[last.Pos:last.End]; got != "7" {
		t.Errorf("expected last span '7', got %q", got)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"<=", LESS_EQUAL},
		{">=", GREATER_EQUAL},
		{"<>", NOT_EQUAL},
		{"!=", NOT_EQUAL},
		{"<", LESS_THAN},
		{">", GREATER_THAN},
		{"%", OPERATOR},
		{"|", OPERATOR},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, tok.Type)
		}
		if tok.Literal != tt.input {
			t.Errorf("%q: literal mismatch, got %q", tt.input, tok.Literal)
		}
	}
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"select", "Select", "SELECT"} {
		if got := LookupIdent(word); got != SELECT {
			t.Errorf("LookupIdent(%q) = %s, want SELECT", word, got)
		}
	}
	if got := LookupIdent("salary"); got != IDENTIFIER {
		t.Errorf("LookupIdent(salary) = %s, want IDENTIFIER", got)
	}
	if !SELECT.IsKeyword() || IDENTIFIER.IsKeyword() {
		t.Error("IsKeyword classification wrong")
	}
}

func TestNonASCIIIdentifier(t *testing.T) {
	tokens, err := Tokenize("ventes_été = 1")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if tokens[0].Type != IDENTIFIER || tokens[0].Literal != "ventes_été" {
		t.Errorf("expected identifier ventes_été, got %v", tokens[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	if _, err := Tokenize("INSERT INTO t (a) VALUES ('oops)"); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}
