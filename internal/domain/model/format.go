package model

import (
	"strconv"
	"strings"
	"time"
)

// CurrencySymbol prefixes money columns.
const CurrencySymbol = "₹"

// Cell is one formatted table cell.
type Cell struct {
	Text string
	Kind ColumnKind
	Tone BadgeTone
	// On is the flag value of a bool column.
	On bool
}

// Badge reports whether the cell renders as a toned badge.
func (c Cell) Badge() bool {
	switch c.Kind {
	case ColumnStatus, ColumnStock, ColumnBool:
		return true
	default:
		return false
	}
}

// FormatCell renders column c of e for display. Missing values render as the
// column fallback; the entity is never rejected for a malformed field.
func FormatCell(c Column, e Entity) Cell {
	cell := Cell{Kind: c.Kind, Tone: ToneNeutral}
	raw := strings.TrimSpace(e.String(c.Field))

	switch c.Kind {
	case ColumnMoney:
		if n, ok := e.Number(c.Field); ok {
			cell.Text = CurrencySymbol + " " + strconv.FormatFloat(n, 'f', -1, 64)
		}
	case ColumnPercent:
		n, _ := e.Number(c.Field)
		if n != 0 {
			cell.Text = strconv.FormatFloat(n, 'f', 0, 64) + "% Off"
		} else {
			cell.Text = "No Discount"
		}
	case ColumnStock:
		n, _ := e.Number(c.Field)
		if n > 0 {
			cell.Text, cell.Tone = "In Stock", ToneSuccess
		} else {
			cell.Text, cell.Tone = "Out of Stock", ToneDanger
		}
	case ColumnBool:
		cell.On = e.Bool(c.Field)
		if cell.On {
			cell.Text, cell.Tone = "Yes", ToneSuccess
		} else {
			cell.Text = "No"
		}
	case ColumnDate:
		cell.Text = formatDate(raw)
	case ColumnStatus:
		cell.Text = raw
		cell.Tone = StatusTone(raw)
	default:
		cell.Text = raw
	}

	if cell.Text == "" {
		cell.Text = c.Fallback
	}
	return cell
}

// FormatRow renders every column of desc for e.
func FormatRow(desc ResourceDescriptor, e Entity) []Cell {
	cells := make([]Cell, len(desc.Columns))
	for i, c := range desc.Columns {
		cells[i] = FormatCell(c, e)
	}
	return cells
}

func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}
