package workspace

import (
	"slices"

	"github.com/JayJamieson/sqlite-api/pkg/models"
)

// State is the set of materialized tables plus the selected one. A published
// State is never modified; every transition returns a new value.
type State struct {
	tables   map[string]*models.Table
	order    []string
	current  string
	filename string
	id       string
}

// NewState builds a State from tables in display order with nothing selected.
func NewState(tables []*models.Table) *State {
	s := &State{
		tables: make(map[string]*models.Table, len(tables)),
		order:  make([]string, 0, len(tables)),
	}

	for _, t := range tables {
		if _, ok := s.tables[t.Name]; !ok {
			s.order = append(s.order, t.Name)
		}
		s.tables[t.Name] = t
	}
	return s
}

func (s *State) Len() int {
	return len(s.order)
}

// Tables returns the tables in display order.
func (s *State) Tables() []*models.Table {
	tables := make([]*models.Table, len(s.order))
	for i, name := range s.order {
		tables[i] = s.tables[name]
	}
	return tables
}

func (s *State) Table(name string) (*models.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Current returns the selected table name, if any.
func (s *State) Current() (string, bool) {
	return s.current, s.current != ""
}

// Database returns the file name and handle id of the database the tables
// were built from, if any.
func (s *State) Database() (filename string, id string, ok bool) {
	return s.filename, s.id, s.id != ""
}

func (s *State) CurrentTable() (*models.Table, bool) {
	if s.current == "" {
		return nil, false
	}
	return s.Table(s.current)
}

func (s *State) clone() *State {
	next := &State{
		tables:   make(map[string]*models.Table, len(s.tables)),
		order:    slices.Clone(s.order),
		current:  s.current,
		filename: s.filename,
		id:       s.id,
	}
	for name, t := range s.tables {
		next.tables[name] = t
	}
	return next
}

// withTable upserts t by name. A replaced table moves to the end of the
// display order, so there is never more than one table per name.
func (s *State) withTable(t *models.Table) *State {
	next := s.clone()
	if _, ok := next.tables[t.Name]; ok {
		next.order = slices.DeleteFunc(next.order, func(name string) bool { return name == t.Name })
	}
	next.order = append(next.order, t.Name)
	next.tables[t.Name] = t
	return next
}

func (s *State) withCurrent(name string) (*State, bool) {
	if _, ok := s.tables[name]; !ok {
		return nil, false
	}
	next := s.clone()
	next.current = name
	return next, true
}
