package schema

import (
	"fmt"
	"sort"
	"strings"
)

// TableSet maps addressable names to tables. A table is stored once under
// its canonical name; aliases resolve to the canonical entry, so every name
// a table answers to sees the same data after a mutation.
type TableSet struct {
	tables  map[string]*Table // canonical name -> table
	aliases map[string]string // every addressable name -> canonical name
}

// NewTableSet creates an empty table set
func NewTableSet() *TableSet {
	return &TableSet{
		tables:  make(map[string]*Table),
		aliases: make(map[string]string),
	}
}

// Register stores t under t.Name plus any aliases. Registering an existing
// canonical name replaces its table and keeps its previous aliases.
func (s *TableSet) Register(t *Table, aliases ...string) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("cannot register table: nil or missing name")
	}
	for _, a := range append([]string{t.Name}, aliases...) {
		if owner, ok := s.aliases[a]; ok && owner != t.Name {
			return fmt.Errorf("name %q already refers to table %q", a, owner)
		}
	}
	s.tables[t.Name] = t
	s.aliases[t.Name] = t.Name
	for _, a := range aliases {
		if a != "" {
			s.aliases[a] = t.Name
		}
	}
	return nil
}

// Resolve maps an addressed name to its canonical name. An exact match wins;
// otherwise a case-insensitive match is accepted when it is unambiguous.
func (s *TableSet) Resolve(name string) (string, bool) {
	if canonical, ok := s.aliases[name]; ok {
		return canonical, true
	}
	found := ""
	for alias, canonical := range s.aliases {
		if !strings.EqualFold(alias, name) {
			continue
		}
		if found != "" && found != canonical {
			return "", false
		}
		found = canonical
	}
	return found, found != ""
}

// Get returns the table addressed by name
func (s *TableSet) Get(name string) (*Table, bool) {
	canonical, ok := s.Resolve(name)
	if !ok {
		return nil, false
	}
	return s.tables[canonical], true
}

// Replace swaps the table addressed by name for t. Every alias of the
// entry sees t afterwards.
func (s *TableSet) Replace(name string, t *Table) error {
	canonical, ok := s.Resolve(name)
	if !ok {
		return fmt.Errorf("table %q is not registered", name)
	}
	t.Name = canonical
	s.tables[canonical] = t
	return nil
}

// Names returns every addressable name, sorted
func (s *TableSet) Names() []string {
	names := make([]string, 0, len(s.aliases))
	for a := range s.aliases {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// Canonical returns the canonical table names, sorted
func (s *TableSet) Canonical() []string {
	names := make([]string, 0, len(s.tables))
	for n := range s.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the non-canonical names that resolve to canonical
func (s *TableSet) Aliases(canonical string) []string {
	var out []string
	for a, c := range s.aliases {
		if c == canonical && a != canonical {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct tables
func (s *TableSet) Len() int {
	return len(s.tables)
}
