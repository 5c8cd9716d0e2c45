package parser

import (
	"strings"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/parser/ast"
	"github.com/leengari/sheetsql/internal/parser/lexer"
)

// Parse extracts the intent of one statement. SELECT is passed through
// untouched; INSERT, UPDATE and DELETE must match the narrow shapes the
// tabular store supports.
func Parse(statement string) (ast.Statement, error) {
	q := Normalize(statement)

	kind, ok := Classify(q)
	if !ok {
		return nil, errors.NewUnsupportedStatement("unsupported SQL operation for the tabular store")
	}
	if kind == ast.KindSelect {
		return &ast.SelectStatement{Query: q}, nil
	}

	tokens, err := lexer.Tokenize(q)
	if err != nil {
		return nil, &errors.Error{Kind: errors.UnsupportedStatement, Message: "lexer error", Err: err}
	}

	p := New(q, tokens)
	switch kind {
	case ast.KindInsert:
		return p.parseInsert()
	case ast.KindUpdate:
		return p.parseUpdate()
	default:
		return p.parseDelete()
	}
}

type Parser struct {
	input   string
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(input string, tokens []lexer.Token) *Parser {
	p := &Parser{input: input, tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF, Pos: len(p.input), End: len(p.input)}
	}
}

func (p *Parser) expect(t lexer.TokenType, shape ast.Kind) error {
	if p.curTok.Type != t {
		return errors.NewUnsupportedStatement("unsupported %s format: expected %s, got %q", shape, t, p.curTok.Literal)
	}
	p.nextToken()
	return nil
}

func (p *Parser) parseInsert() (*ast.InsertStatement, error) {
	if err := p.expect(lexer.INSERT, ast.KindInsert); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.INTO, ast.KindInsert); err != nil {
		return nil, err
	}

	table, ok := p.nameFrom(p.collectUntil(lexer.PAREN_OPEN))
	if !ok {
		return nil, errors.NewUnsupportedStatement("unsupported INSERT format: missing table name")
	}
	if p.curTok.Type != lexer.PAREN_OPEN {
		return nil, errors.NewUnsupportedStatement("unsupported INSERT format: a column list is required")
	}

	colGroups, err := p.parseGroupList(ast.KindInsert)
	if err != nil {
		return nil, err
	}
	if len(colGroups) == 0 {
		return nil, errors.NewUnsupportedStatement("unsupported INSERT format: empty column list")
	}
	columns := make([]string, 0, len(colGroups))
	for _, g := range colGroups {
		col, ok := p.nameFrom(g)
		if !ok {
			return nil, errors.NewUnsupportedStatement("unsupported INSERT format: invalid column %q", p.raw(g))
		}
		columns = append(columns, col)
	}

	if err := p.expect(lexer.VALUES, ast.KindInsert); err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.PAREN_OPEN {
		return nil, errors.NewUnsupportedStatement("unsupported INSERT format: expected ( after VALUES")
	}
	valGroups, err := p.parseGroupList(ast.KindInsert)
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.EOF {
		return nil, errors.NewUnsupportedStatement("unsupported INSERT format: only a single VALUES row is supported")
	}
	values := make([]interface{}, 0, len(valGroups))
	for i, g := range valGroups {
		v, ok := p.valueFrom(g)
		if !ok {
			return nil, errors.NewUnsupportedStatement("unsupported INSERT format: value %d is empty", i+1)
		}
		values = append(values, v)
	}

	return &ast.InsertStatement{Table: table, Columns: columns, Values: values}, nil
}

func (p *Parser) parseUpdate() (*ast.UpdateStatement, error) {
	if err := p.expect(lexer.UPDATE, ast.KindUpdate); err != nil {
		return nil, err
	}

	table, ok := p.nameFrom(p.collectUntil(lexer.SET))
	if !ok {
		return nil, errors.NewUnsupportedStatement("unsupported UPDATE format: missing table name")
	}
	if err := p.expect(lexer.SET, ast.KindUpdate); err != nil {
		return nil, err
	}

	setToks := p.collectUntil(lexer.WHERE)
	if p.curTok.Type != lexer.WHERE {
		return nil, errors.NewUnsupportedStatement("unsupported UPDATE format: a WHERE clause is required")
	}
	p.nextToken()
	whereToks := p.collectUntil(lexer.EOF)

	if len(setToks) == 0 {
		return nil, errors.NewInvalidAssignment("")
	}
	var assignments []ast.Assignment
	for _, g := range splitTopLevel(setToks, lexer.COMMA) {
		a, err := p.parseAssignment(g)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	where, err := p.parsePredicate(whereToks)
	if err != nil {
		return nil, err
	}

	return &ast.UpdateStatement{Table: table, Assignments: assignments, Where: where}, nil
}

func (p *Parser) parseDelete() (*ast.DeleteStatement, error) {
	if err := p.expect(lexer.DELETE, ast.KindDelete); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.FROM, ast.KindDelete); err != nil {
		return nil, err
	}

	table, ok := p.nameFrom(p.collectUntil(lexer.WHERE))
	if !ok {
		return nil, errors.NewUnsupportedStatement("unsupported DELETE format: missing table name")
	}
	if p.curTok.Type != lexer.WHERE {
		return nil, errors.NewUnsupportedStatement("unsupported DELETE format: a WHERE clause is required")
	}
	p.nextToken()

	where, err := p.parsePredicate(p.collectUntil(lexer.EOF))
	if err != nil {
		return nil, err
	}

	return &ast.DeleteStatement{Table: table, Where: where}, nil
}

// parseAssignment reads one SET fragment: <column> = <value>
func (p *Parser) parseAssignment(group []lexer.Token) (ast.Assignment, error) {
	eq := topLevelIndexes(group, lexer.EQUALS)
	if len(eq) != 1 {
		return ast.Assignment{}, errors.NewInvalidAssignment(p.raw(group))
	}
	col, ok := p.nameFrom(group[:eq[0]])
	if !ok {
		return ast.Assignment{}, errors.NewInvalidAssignment(p.raw(group))
	}
	val, ok := p.valueFrom(group[eq[0]+1:])
	if !ok {
		return ast.Assignment{}, errors.NewInvalidAssignment(p.raw(group))
	}
	return ast.Assignment{Column: col, Value: val}, nil
}

// parsePredicate accepts exactly <column> = <literal>
func (p *Parser) parsePredicate(tokens []lexer.Token) (ast.Predicate, error) {
	clause := p.raw(tokens)

	eq := -1
	for i, tok := range tokens {
		if tok.Type == lexer.EQUALS {
			eq = i
			break
		}
	}
	if eq < 0 {
		return ast.Predicate{}, errors.NewUnsupportedPredicate(clause)
	}

	col, ok := p.nameFrom(tokens[:eq])
	if !ok {
		return ast.Predicate{}, errors.NewUnsupportedPredicate(clause)
	}

	right := tokens[eq+1:]
	switch {
	case len(right) == 1 && isPredicateLiteral(right[0].Type):
		return ast.Predicate{Column: col, Value: right[0].Literal}, nil
	case len(right) == 2 && right[0].Type == lexer.MINUS && right[1].Type == lexer.NUMBER && right[0].End == right[1].Pos:
		return ast.Predicate{Column: col, Value: "-" + right[1].Literal}, nil
	default:
		return ast.Predicate{}, errors.NewUnsupportedPredicate(clause)
	}
}

// parseGroupList consumes a parenthesized, comma separated list and returns
// the tokens of each element. Commas nested in inner parentheses do not split.
func (p *Parser) parseGroupList(shape ast.Kind) ([][]lexer.Token, error) {
	// (
	p.nextToken()

	groups := [][]lexer.Token{{}}
	depth := 0
	for {
		switch p.curTok.Type {
		case lexer.EOF:
			return nil, errors.NewUnsupportedStatement("unsupported %s format: unbalanced parentheses", shape)
		case lexer.PAREN_OPEN:
			depth++
		case lexer.PAREN_CLOSE:
			if depth == 0 {
				p.nextToken()
				if len(groups) == 1 && len(groups[0]) == 0 {
					return nil, nil
				}
				return groups, nil
			}
			depth--
		case lexer.COMMA:
			if depth == 0 {
				groups = append(groups, []lexer.Token{})
				p.nextToken()
				continue
			}
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], p.curTok)
		p.nextToken()
	}
}

// collectUntil gathers tokens until stop appears outside parentheses, or EOF.
// The stop token is left as the current token.
func (p *Parser) collectUntil(stop lexer.TokenType) []lexer.Token {
	var out []lexer.Token
	depth := 0
	for p.curTok.Type != lexer.EOF {
		if depth == 0 && p.curTok.Type == stop {
			break
		}
		switch p.curTok.Type {
		case lexer.PAREN_OPEN:
			depth++
		case lexer.PAREN_CLOSE:
			depth--
		}
		out = append(out, p.curTok)
		p.nextToken()
	}
	return out
}

// nameFrom turns name tokens into an identifier. A single quoted token
// yields its content; otherwise the tokens must be words, numbers and
// hyphens, and the raw source span is used so "my sheet" and "q1-sales"
// survive intact.
func (p *Parser) nameFrom(tokens []lexer.Token) (string, bool) {
	if len(tokens) == 0 {
		return "", false
	}
	if len(tokens) == 1 && (tokens[0].Type == lexer.QUOTED_IDENT || tokens[0].Type == lexer.STRING) {
		name := strings.TrimSpace(tokens[0].Literal)
		return name, name != ""
	}
	for _, tok := range tokens {
		if !isNameToken(tok.Type) {
			return "", false
		}
	}
	return stripQuotes(strings.TrimSpace(p.raw(tokens))), true
}

// valueFrom turns one list element into a literal. Quoted text loses its
// quotes, bare NULL is nil, anything else is kept as raw source text.
func (p *Parser) valueFrom(tokens []lexer.Token) (interface{}, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	if len(tokens) == 1 {
		switch tokens[0].Type {
		case lexer.STRING, lexer.QUOTED_IDENT:
			return tokens[0].Literal, true
		case lexer.NULL:
			return nil, true
		}
	}
	return stripQuotes(strings.TrimSpace(p.raw(tokens))), true
}

// raw returns the source text covered by tokens
func (p *Parser) raw(tokens []lexer.Token) string {
	if len(tokens) == 0 {
		return ""
	}
	return p.input[tokens[0].Pos:tokens[len(tokens)-1].End]
}
