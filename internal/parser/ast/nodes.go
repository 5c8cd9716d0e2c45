package ast

import (
	"bytes"
	"fmt"
)

// Kind names the statement shape
type Kind string

const (
	KindSelect Kind = "SELECT"
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Statement is the parsed intent of one SQL statement
type Statement interface {
	Kind() Kind
	String() string
	statementNode()
}

// Mutation is a Statement that changes one table
type Mutation interface {
	Statement
	TargetTable() string
}

// SelectStatement is passed through to the query evaluator verbatim
type SelectStatement struct {
	Query string
}

func (s *SelectStatement) statementNode() {}
func (s *SelectStatement) Kind() Kind     { return KindSelect }
func (s *SelectStatement) String() string { return s.Query }

// Predicate is a single column = value equality
type Predicate struct {
	Column string
	Value  string
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s = '%s'", p.Column, p.Value)
}

// Assignment is one column = value pair from a SET clause.
// Value is a string, or nil for a bare NULL.
type Assignment struct {
	Column string
	Value  interface{}
}

// InsertStatement: INSERT INTO table (col1, col2) VALUES (val1, val2)
// Values hold strings, or nil for a bare NULL.
type InsertStatement struct {
	Table   string
	Columns []string
	Values  []interface{}
}

func (s *InsertStatement) statementNode()      {}
func (s *InsertStatement) Kind() Kind          { return KindInsert }
func (s *InsertStatement) TargetTable() string { return s.Table }
func (s *InsertStatement) String() string {
	var out bytes.Buffer
	out.WriteString("INSERT INTO ")
	out.WriteString(s.Table)
	out.WriteString(" (")
	for i, c := range s.Columns {
		out.WriteString(c)
		if i < len(s.Columns)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(") VALUES (")
	for i, v := range s.Values {
		out.WriteString(literal(v))
		if i < len(s.Values)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(")")
	return out.String()
}

// UpdateStatement: UPDATE table SET col = val, ... WHERE col = val
type UpdateStatement struct {
	Table       string
	Assignments []Assignment
	Where       Predicate
}

func (s *UpdateStatement) statementNode()      {}
func (s *UpdateStatement) Kind() Kind          { return KindUpdate }
func (s *UpdateStatement) TargetTable() string { return s.Table }
func (s *UpdateStatement) String() string {
	var out bytes.Buffer
	out.WriteString("UPDATE ")
	out.WriteString(s.Table)
	out.WriteString(" SET ")
	for i, a := range s.Assignments {
		out.WriteString(a.Column)
		out.WriteString(" = ")
		out.WriteString(literal(a.Value))
		if i < len(s.Assignments)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(" WHERE ")
	out.WriteString(s.Where.String())
	return out.String()
}

// DeleteStatement: DELETE FROM table WHERE col = val
type DeleteStatement struct {
	Table string
	Where Predicate
}

func (s *DeleteStatement) statementNode()      {}
func (s *DeleteStatement) Kind() Kind          { return KindDelete }
func (s *DeleteStatement) TargetTable() string { return s.Table }
func (s *DeleteStatement) String() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", s.Table, s.Where.String())
}

func literal(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("'%v'", v)
}
