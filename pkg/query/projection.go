// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column).
// It defines the base table, any joined tables, and the selected columns.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	joins      []string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a column of the base table under the given view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.ProjectFrom(p.alias, column, viewName)
}

// ProjectFrom adds a column of a joined table, identified by its alias.
func (p *ProjectionMap) ProjectFrom(alias, column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Join adds an inner join against table (aliased) using the given ON condition.
func (p *ProjectionMap) Join(table, alias, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf(
		"JOIN %s.%s %s ON %s",
		p.schema, table, alias, on,
	))
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the fully qualified base table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns the base table followed by all joins, suitable for a FROM clause.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}
	return p.Table() + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
