package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Case      string             `json:"case"`
	Timestamp time.Time          `json:"timestamp"`
	NumNodes  int                `json:"num_nodes"`
	Inputs    map[string]string  `json:"inputs"`
	Summary   map[string]float64 `json:"summary"`
}

// Table is one row per node, one column per variable.
type Table struct {
	Columns []string
	Units   []string
	Rows    [][]float64
}

// TableFromVars lays out vars as nn rows, broadcasting scalars.
func TableFromVars(vars sim.Vars, nn int) Table {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, string(name))
	}
	sort.Strings(names)

	t := Table{Columns: names, Units: make([]string, len(names)), Rows: make([][]float64, nn)}
	for j, name := range names {
		t.Units[j] = quantity.Name(name).Unit()
	}
	for i := range t.Rows {
		t.Rows[i] = make([]float64, len(names))
		for j, name := range names {
			t.Rows[i][j] = vars.At(quantity.Name(name), i)
		}
	}
	return t
}

// Column returns the values of one column.
func (t Table) Column(name string) ([]float64, bool) {
	for j, c := range t.Columns {
		if c == name {
			out := make([]float64, len(t.Rows))
			for i, row := range t.Rows {
				out[i] = row[j]
			}
			return out, true
		}
	}
	return nil, false
}

// Float is a float64 that survives JSON when it is NaN or infinite: those
// values are written as the strings "NaN", "+Inf" and "-Inf".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func toFloats(m map[string]float64) map[string]Float {
	if m == nil {
		return nil
	}
	out := make(map[string]Float, len(m))
	for k, v := range m {
		out[k] = Float(v)
	}
	return out
}

func fromFloats(m map[string]Float) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	type plain RunMetadata
	return json.Marshal(struct {
		plain
		Summary map[string]Float `json:"summary"`
	}{plain(m), toFloats(m.Summary)})
}

func (m *RunMetadata) UnmarshalJSON(b []byte) error {
	type plain RunMetadata
	aux := struct {
		*plain
		Summary map[string]Float `json:"summary"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.Summary = fromFloats(aux.Summary)
	return nil
}

func newRunID(name string) string {
	return fmt.Sprintf("%s_%s", name, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func (s *Store) Save(meta RunMetadata, table Table) (string, error) {
	name := meta.Case
	if name == "" {
		name = meta.Kind
	}
	meta.ID = newRunID(name)
	meta.Timestamp = time.Now()
	meta.NumNodes = len(table.Rows)

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, data, table); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			log.WithError(rmErr).WithField("dir", runDir).Warn("could not remove partial run")
		}
		return "", err
	}

	log.WithFields(log.Fields{"run": meta.ID, "kind": meta.Kind, "nodes": meta.NumNodes}).Info("run saved")
	return meta.ID, nil
}

func writeRun(runDir string, meta []byte, table Table) error {
	if err := os.WriteFile(filepath.Join(runDir, "metadata.json"), append(meta, '\n'), 0644); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "nodes.csv"))
	if err != nil {
		return err
	}
	if err := WriteCSV(csvFile, table); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			log.WithError(err).WithField("dir", entry.Name()).Debug("skipping run directory")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTable(runID string) (Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "nodes.csv"))
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	t := Table{
		Columns: make([]string, len(records[0])),
		Units:   make([]string, len(records[0])),
		Rows:    make([][]float64, 0, len(records)-1),
	}
	for j, h := range records[0] {
		t.Columns[j], t.Units[j] = parseHeader(h)
	}

	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return Table{}, fmt.Errorf("%s: column %s: %w", runID, t.Columns[j], err)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func header(name, unit string) string {
	if unit == "" {
		return name
	}
	return fmt.Sprintf("%s [%s]", name, unit)
}

func parseHeader(h string) (string, string) {
	if i := strings.LastIndex(h, " ["); i >= 0 && strings.HasSuffix(h, "]") {
		return h[:i], h[i+2 : len(h)-1]
	}
	return h, ""
}
