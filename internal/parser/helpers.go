package parser

import (
	"strings"

	"github.com/leengari/sheetsql/internal/parser/ast"
	"github.com/leengari/sheetsql/internal/parser/lexer"
)

// Normalize trims surrounding whitespace and trailing semicolons
func Normalize(statement string) string {
	q := strings.TrimSpace(statement)
	q = strings.TrimRight(q, ";")
	return strings.TrimSpace(q)
}

// Classify reports the statement kind from its case-insensitive prefix
func Classify(statement string) (ast.Kind, bool) {
	lower := strings.ToLower(statement)
	switch {
	case strings.HasPrefix(lower, "select"):
		return ast.KindSelect, true
	case strings.HasPrefix(lower, "insert"):
		return ast.KindInsert, true
	case strings.HasPrefix(lower, "update"):
		return ast.KindUpdate, true
	case strings.HasPrefix(lower, "delete"):
		return ast.KindDelete, true
	default:
		return "", false
	}
}

// IsSelect reports whether statement is read-only by the select-prefix rule
func IsSelect(statement string) bool {
	kind, _ := Classify(Normalize(statement))
	return kind == ast.KindSelect
}

// isNameToken checks if a token can be part of an unquoted table or column name
func isNameToken(t lexer.TokenType) bool {
	return t == lexer.IDENTIFIER || t == lexer.NUMBER || t == lexer.MINUS
}

// isPredicateLiteral checks if a token can stand alone on the right of a WHERE equality
func isPredicateLiteral(t lexer.TokenType) bool {
	return t == lexer.STRING ||
		t == lexer.QUOTED_IDENT ||
		t == lexer.NUMBER ||
		t == lexer.IDENTIFIER ||
		t == lexer.TRUE ||
		t == lexer.FALSE
}

// splitTopLevel splits tokens on sep where sep is not nested in parentheses
func splitTopLevel(tokens []lexer.Token, sep lexer.TokenType) [][]lexer.Token {
	groups := [][]lexer.Token{{}}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.PAREN_OPEN:
			depth++
		case lexer.PAREN_CLOSE:
			depth--
		}
		if tok.Type == sep && depth == 0 {
			groups = append(groups, []lexer.Token{})
			continue
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], tok)
	}
	return groups
}

// topLevelIndexes returns the positions of t outside parentheses
func topLevelIndexes(tokens []lexer.Token, t lexer.TokenType) []int {
	var out []int
	depth := 0
	for i, tok := range tokens {
		switch tok.Type {
		case lexer.PAREN_OPEN:
			depth++
		case lexer.PAREN_CLOSE:
			depth--
		}
		if tok.Type == t && depth == 0 {
			out = append(out, i)
		}
	}
	return out
}

// stripQuotes removes surrounding quote and backtick characters
func stripQuotes(s string) string {
	return strings.Trim(s, "`\"'")
}
