package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/experiment"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
	"github.com/san-kum/aerosim/internal/storage"
	"github.com/san-kum/aerosim/internal/viz"
)

const defaultPreset = "unsw-m2"

// loadCase picks the config file, then the preset, then the default preset,
// and applies flag overrides only where a flag was given.
func loadCase(cmd *cobra.Command) (*config.Case, error) {
	var c *config.Case
	switch {
	case configFile != "":
		var err error
		c, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		name := preset
		if name == "" {
			name = defaultPreset
		}
		c = config.GetPreset(name)
		if c == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("nodes") {
		c.NumNodes = numNodes
	}
	if cmd.Flags().Changed("gravity") {
		c.Gravity = gravity
	}
	for _, kv := range setValues {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		name, err := quantity.Lookup(strings.TrimSpace(key))
		if err != nil {
			return nil, err
		}
		spec, err := config.ParseValueSpec(val)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		c.Values[string(name)] = spec
	}
	return c, nil
}

// collapse reduces node-valued inputs to their first value so the case can
// be re-laid out on a different node count.
func collapse(c *config.Case, keep quantity.Name) {
	for k, v := range c.Values {
		if quantity.Name(k) == keep || len(v.Values) == 0 {
			continue
		}
		log.WithFields(log.Fields{"input": k, "value": v.Values[0]}).Warn("using first node value")
		v.Value, v.Values = v.Values[0], nil
		c.Values[k] = v
	}
}

func chain() experiment.Chain {
	return experiment.Chain(chainName)
}

func runCase(cmd *cobra.Command, c *config.Case, opts sim.Options) (*experiment.Result, error) {
	exp := experiment.New(experiment.Config{Case: c, Chain: chain(), Options: opts})
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	return exp.Run(cmd.Context())
}

func saveRun(kind string, c *config.Case, inputs map[string]string, summary map[string]float64, vars sim.Vars, nn int) error {
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Kind:    kind,
		Case:    c.Name,
		Inputs:  inputs,
		Summary: summary,
	}, storage.TableFromVars(vars, nn))
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

// printNodes writes one row per node with the given columns in canonical
// units.
func printNodes(vars sim.Vars, names []quantity.Name, nn int) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "NODE")
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", heading(n))
	}
	fmt.Fprintln(w)

	for i := 0; i < nn; i++ {
		fmt.Fprintf(w, "%d", i)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.6g", vars.At(n, i))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func heading(n quantity.Name) string {
	if u := n.Unit(); u != "" && u != "unitless" {
		return fmt.Sprintf("%s [%s]", n, u)
	}
	return string(n)
}

func printSummary(summary map[string]float64) {
	fmt.Println()
	fmt.Println(viz.Header.Render("summary (node mean)"))
	for _, k := range sortedKeys(summary) {
		fmt.Printf("  %s: %.6g\n", k, summary[k])
	}
}
