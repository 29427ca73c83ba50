package hierarchy

import (
	"fmt"
)

// Pill colours for the status column.
const (
	ActiveColor        = "#52c41a"
	ActiveBackground   = "#f6ffed"
	InactiveColor      = "#ff4d4f"
	InactiveBackground = "#fff1f0"
)

// StatusPill is the rendered form of a boolean status.
type StatusPill struct {
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background"`
}

// Pill maps a status flag to its display pill.
func Pill(active bool) StatusPill {
	if active {
		return StatusPill{Label: "Active", Color: ActiveColor, Background: ActiveBackground}
	}
	return StatusPill{Label: "Inactive", Color: InactiveColor, Background: InactiveBackground}
}

// Row is a stored hierarchy as returned by the list endpoint.
type Row struct {
	ID     uint    `json:"id"`
	Levels []Level `json:"levels"`
	Status bool    `json:"status"`
}

// Column is one table header.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// TableRow is one rendered hierarchy: one cell per level column.
type TableRow struct {
	ID     uint       `json:"id"`
	Cells  []string   `json:"cells"`
	Status StatusPill `json:"status"`
}

// TableView is the dynamic hierarchy table.
type TableView struct {
	Columns []Column   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// Table lays out rows with one column per level, sized to the deepest row.
// Shorter rows leave trailing cells blank. Role ids missing from roleNames
// render as "#<id>".
func Table(rows []Row, roleNames map[uint]string) TableView {
	depth := 0
	for _, row := range rows {
		for _, entry := range row.Levels {
			if entry.Level > depth {
				depth = entry.Level
			}
		}
	}

	view := TableView{
		Columns: make([]Column, depth),
		Rows:    make([]TableRow, 0, len(rows)),
	}
	for i := 0; i < depth; i++ {
		view.Columns[i] = Column{
			Key:   fmt.Sprintf("level_%d", i+1),
			Title: fmt.Sprintf("Level %d", i+1),
		}
	}

	for _, row := range rows {
		cells := make([]string, depth)
		for _, entry := range row.Levels {
			if entry.Level < 1 || entry.Level > depth || entry.RoleID == 0 {
				continue
			}
			name, ok := roleNames[entry.RoleID]
			if !ok {
				name = fmt.Sprintf("#%d", entry.RoleID)
			}
			cells[entry.Level-1] = name
		}
		view.Rows = append(view.Rows, TableRow{ID: row.ID, Cells: cells, Status: Pill(row.Status)})
	}
	return view
}
