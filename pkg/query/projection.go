// Package query provides SQL query building utilities with projection mapping.
package query

import "strings"

// ProjectionMap binds view property names to the columns of one aliased table.
// Column order is the order of Project calls and is the scan order of every
// statement built from the map.
type ProjectionMap struct {
	schema string
	table  string
	alias  string

	index     map[string]int
	names     []string
	qualified []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		index:  make(map[string]int),
	}
}

// Project maps column to viewName. Projecting a view name twice panics, since
// projections are declared once at package init.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	if _, dup := p.index[viewName]; dup {
		panic("query: duplicate projection " + viewName + " on " + p.table)
	}
	p.index[viewName] = len(p.names)
	p.names = append(p.names, column)
	p.qualified = append(p.qualified, p.alias+"."+column)
	return p
}

func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Name returns the bare table name, for statements that take no alias.
func (p *ProjectionMap) Name() string {
	return p.table
}

// Table returns the aliased table reference (schema.table alias).
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.lookup(viewName); ok {
		return col
	}
	return viewName
}

func (p *ProjectionMap) lookup(viewName string) (string, bool) {
	i, ok := p.index[viewName]
	if !ok {
		return "", false
	}
	return p.qualified[i], true
}

// Columns returns the qualified columns as a select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.qualified, ", ")
}

// ColumnList returns the qualified columns in projection order.
func (p *ProjectionMap) ColumnList() []string {
	return p.qualified
}

// Names returns the unqualified column names in projection order.
func (p *ProjectionMap) Names() []string {
	return p.names
}
