package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/aerosim/internal/sim"
	"github.com/san-kum/aerosim/internal/storage"
	"github.com/san-kum/aerosim/internal/viz"
)

// maxPlots bounds the number of columns plotted by show.
const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCASE\tTIME\tNODES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Kind,
			run.Case,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumNodes,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("run: " + meta.ID))
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("case: %s\n", meta.Case)
	fmt.Printf("time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("nodes: %d\n", meta.NumNodes)

	fmt.Println()
	fmt.Println(viz.Header.Render("inputs"))
	for _, k := range sortedKeys(meta.Inputs) {
		fmt.Printf("  %s = %s\n", k, meta.Inputs[k])
	}
	printSummary(meta.Summary)
	fmt.Println()

	if len(table.Rows) < 2 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for j, c := range table.Columns {
			v := 0.0
			if len(table.Rows) == 1 {
				v = table.Rows[0][j]
			}
			fmt.Fprintf(w, "%s\t%.6g\t%s\n", c, v, table.Units[j])
		}
		return w.Flush()
	}

	plotted := 0
	for j, c := range table.Columns {
		if plotted == maxPlots {
			break
		}
		data, _ := table.Column(c)
		if flat(data) || !sim.IsFinite(data) {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s [%s] by node", c, table.Units[j])),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}
	return nil
}

func flat(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	table, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".csv"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.WriteCSV(f, table); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".json"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := storage.ExportJSON(f, *meta, table); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
