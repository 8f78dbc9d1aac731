package query

import (
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a view property name of the
// projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses a comma-separated sort string such as
// "TargetDate,-CreatedAt". A leading "-" sorts descending. Empty input
// returns nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// params numbers positional arguments as they are bound.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

type condition func(p *params) string

// Builder composes SELECT statements over a projection. Conditions are
// joined with AND and bound to positional parameters in the order added.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection. defaultSort applies when no
// usable sort is set with OrderByFields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// OrderByFields sets the sort order. Fields the projection does not map are
// dropped, so client-supplied sorts never reach the SQL text.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds field = value. Nil values add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, func(p *params) string {
		return col + " = " + p.bind(value)
	})
	return b
}

// WhereEqualsAny adds a condition true when any of fields equals value.
// Nil values or an empty field list add nothing.
func (b *Builder) WhereEqualsAny(value any, fields ...string) *Builder {
	if isNil(value) || len(fields) == 0 {
		return b
	}
	b.conditions = append(b.conditions, func(p *params) string {
		terms := make([]string, len(fields))
		for i, f := range fields {
			terms[i] = b.projection.Column(f) + " = " + p.bind(value)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
	return b
}

// WhereNullable adds field IS NULL for a nil value and field = value otherwise.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	col := b.projection.Column(field)
	if isNil(value) {
		b.conditions = append(b.conditions, func(*params) string { return col + " IS NULL" })
		return b
	}
	return b.WhereEquals(field, value)
}

// Build returns the full SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	p := b.selectFrom(&sb, b.projection.Columns())
	b.writeOrderBy(&sb)
	return sb.String(), p.args
}

// BuildCount returns a COUNT(*) over the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	var sb strings.Builder
	p := b.selectFrom(&sb, "COUNT(*)")
	return sb.String(), p.args
}

// BuildPage returns the ordered SELECT limited to one 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	var sb strings.Builder
	p := b.selectFrom(&sb, b.projection.Columns())
	b.writeOrderBy(&sb)
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(pageSize))
	sb.WriteString(" OFFSET ")
	sb.WriteString(strconv.Itoa((page - 1) * pageSize))
	return sb.String(), p.args
}

// BuildSingle returns a SELECT of the row whose idField equals id. Other
// conditions on the builder are ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return "SELECT " + b.projection.Columns() +
		" FROM " + b.projection.Table() +
		" WHERE " + b.projection.Column(idField) + " = $1", []any{id}
}

func (b *Builder) selectFrom(sb *strings.Builder, list string) *params {
	p := &params{}
	sb.WriteString("SELECT ")
	sb.WriteString(list)
	sb.WriteString(" FROM ")
	sb.WriteString(b.projection.Table())

	for i, cond := range b.conditions {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(cond(p))
	}
	return p
}

func (b *Builder) writeOrderBy(sb *strings.Builder) {
	terms := b.orderTerms(b.sort)
	if len(terms) == 0 {
		terms = b.orderTerms(b.defaultSort)
	}
	if len(terms) == 0 {
		return
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(terms, ", "))
}

func (b *Builder) orderTerms(fields []SortField) []string {
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := b.projection.lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}
	return terms
}

// isNil reports whether value is nil or a nil pointer, map, or slice.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
