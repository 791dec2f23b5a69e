package dataprocessing

import (
	"io"
	"log/slog"
)

// numCol builds a number column; nil entries are missing
func numCol(name string, vals ...any) *Column {
	col := &Column{Name: name, Kind: KindNumber}
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			col.Cells = append(col.Cells, Missing)
		case int:
			col.Cells = append(col.Cells, NumberCell(float64(x)))
		case float64:
			col.Cells = append(col.Cells, NumberCell(x))
		}
	}
	return col
}

// textCol builds a text column; nil entries are missing
func textCol(name string, vals ...any) *Column {
	col := &Column{Name: name, Kind: KindText}
	for _, v := range vals {
		if s, ok := v.(string); ok {
			col.Cells = append(col.Cells, TextCell(s))
		} else {
			col.Cells = append(col.Cells, Missing)
		}
	}
	return col
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
