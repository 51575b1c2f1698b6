package records

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

// FilterAll is the filter value that matches everything.
const FilterAll = "all"

// Field types of the record forms
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldTime     = "time"
	FieldSelect   = "select"
	FieldTextarea = "textarea"
)

type Option struct {
	Value string
	Label string
}

// Field is one input of a record form. Name is the form tag of the bound struct field.
type Field struct {
	Name    string
	Label   string
	Type    string
	Options []Option
}

type Column[T any] struct {
	Label string
	Value func(T) string
}

// Filter narrows a list on the query parameter Param.
// Options lists fixed choices; OptionsFrom derives them from the items (eg. departments).
type Filter[T any] struct {
	Param       string
	Label       string
	Options     []Option
	OptionsFrom func(items []T) []string
	Match       func(item T, value string) bool
}

// Query is a search term plus the selected filter values, keyed by Filter.Param.
type Query struct {
	Search  string
	Filters map[string]string
}

func (q Query) Value(param string) string {
	if v, ok := q.Filters[param]; ok && v != "" {
		return v
	}
	return FilterAll
}

// Screen describes one "filter + table + form" list screen of entity T.
type Screen[T Record[T]] struct {
	Name     string // plural, eg. "Students"
	Singular string
	Subtitle string
	Route    string
	Icon     string

	Search  []func(T) string
	Filters []Filter[T]
	Less    func(a, b T) bool
	// Scope restricts the rows `ident` may see; nil shows every row.
	Scope   func(items []T, ident session.Identity) []T
	Columns []Column[T]
	Fields  []Field
	Editors []session.Role
	// Prepare normalizes bound form input before validation.
	Prepare func(item *T)
}

// CanModify reports whether `role` may add, edit or delete rows.
func (s *Screen[T]) CanModify(role session.Role) bool {
	for _, r := range s.Editors {
		if r == role {
			return true
		}
	}
	return false
}

// Apply scopes the items to `ident`, applies the search term and the filters, then sorts.
// The input slice is not modified.
func (s *Screen[T]) Apply(items []T, q Query, ident session.Identity) []T {
	if s.Scope != nil {
		items = s.Scope(items, ident)
	}
	search := core.CleanString(q.Search)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && !s.matchesSearch(item, search) {
			continue
		}
		if !s.matchesFilters(item, q) {
			continue
		}
		out = append(out, item)
	}

	if s.Less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	}
	return out
}

func (s *Screen[T]) matchesSearch(item T, search string) bool {
	for _, field := range s.Search {
		if core.ContainsFold(field(item), search) {
			return true
		}
	}
	return false
}

func (s *Screen[T]) matchesFilters(item T, q Query) bool {
	for _, f := range s.Filters {
		val := q.Value(f.Param)
		if val == FilterAll {
			continue
		}
		if !f.Match(item, val) {
			return false
		}
	}
	return true
}

// FilterOptions returns the choices of every filter; derived options come from `items`.
func (s *Screen[T]) FilterOptions(items []T) map[string][]Option {
	opts := make(map[string][]Option, len(s.Filters))
	for _, f := range s.Filters {
		if f.OptionsFrom == nil {
			opts[f.Param] = f.Options
			continue
		}
		for _, v := range f.OptionsFrom(items) {
			opts[f.Param] = append(opts[f.Param], Option{Value: v, Label: v})
		}
	}
	return opts
}

// Row is one rendered table row.
type Row struct {
	ID    string
	Cells []string
}

func (s *Screen[T]) Headers() []string {
	headers := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		headers = append(headers, col.Label)
	}
	return headers
}

func (s *Screen[T]) Rows(items []T) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := Row{ID: item.RecordID(), Cells: make([]string, 0, len(s.Columns))}
		for _, col := range s.Columns {
			row.Cells = append(row.Cells, col.Value(item))
		}
		rows = append(rows, row)
	}
	return rows
}

// FormValues returns the form-tagged fields of `item` as strings, keyed by form name.
// Slices are joined with ", ".
func FormValues(item interface{}) map[string]string {
	v := reflect.Indirect(reflect.ValueOf(item))
	t := v.Type()
	values := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" || name == "-" {
			continue
		}
		values[name] = formatValue(v.Field(i))
	}
	return values
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts = append(parts, formatValue(v.Index(i)))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// distinct returns the sorted unique non-empty values of key over items.
func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := key(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// splitList splits a comma separated list, dropping blanks.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
