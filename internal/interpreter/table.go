package interpreter

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// Cell is one value of a tabular answer
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// Table holds an answer that parsed as a JSON array. Columns follow the key
// order of the first record; later records are not checked against it.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// TryParseTable reports whether text is a non-empty JSON array. Parse
// failures are the normal case for prose answers and are not errors.
func TryParseTable(text string) (*Table, bool) {
	var p fastjson.Parser
	v, err := p.Parse(text)
	if err != nil || v.Type() != fastjson.TypeArray {
		return nil, false
	}

	records := v.GetArray()
	if len(records) == 0 {
		return nil, false
	}

	t := &Table{}
	if first, err := records[0].Object(); err == nil {
		first.Visit(func(key []byte, _ *fastjson.Value) {
			t.Columns = append(t.Columns, string(key))
		})
	}

	t.Rows = make([][]Cell, 0, len(records))
	for _, rec := range records {
		row := make([]Cell, len(t.Columns))
		if rec.Type() == fastjson.TypeObject {
			for i, col := range t.Columns {
				row[i] = newCell(rec.Get(col))
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, true
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Rows)
}

// Chartable reports whether the table has an axis column and a series column
func (t *Table) Chartable() bool {
	return len(t.Columns) >= 2
}

// Series returns the axis labels (column 0) and plotted values (column 1).
// Rows whose series cell is not numeric are skipped.
func (t *Table) Series() (labels []string, values []float64) {
	if !t.Chartable() {
		return nil, nil
	}

	for _, row := range t.Rows {
		if !row[1].IsNumber {
			continue
		}
		labels = append(labels, row[0].Text)
		values = append(values, row[1].Number)
	}

	return labels, values
}

func newCell(v *fastjson.Value) Cell {
	if v == nil {
		return Cell{}
	}

	switch v.Type() {
	case fastjson.TypeNull:
		return Cell{}
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		c := Cell{Text: s}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			c.Number, c.IsNumber = f, true
		}
		return c
	case fastjson.TypeNumber:
		return Cell{Text: v.String(), Number: v.GetFloat64(), IsNumber: true}
	default:
		return Cell{Text: v.String()}
	}
}
