package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Units   map[string]string  `json:"units"`
	Columns map[string][]Float `json:"columns"`
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	head := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		head[j] = header(c, t.Units[j])
	}
	if err := cw.Write(head); err != nil {
		return err
	}

	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportJSON(w io.Writer, meta RunMetadata, t Table) error {
	data := ExportData{
		Run:     meta,
		Units:   make(map[string]string, len(t.Columns)),
		Columns: make(map[string][]Float, len(t.Columns)),
	}
	for j, c := range t.Columns {
		data.Units[c] = t.Units[j]
		col, _ := t.Column(c)
		vals := make([]Float, len(col))
		for i, v := range col {
			vals[i] = Float(v)
		}
		data.Columns[c] = vals
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
