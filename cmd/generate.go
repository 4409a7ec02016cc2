package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/resortgen/internal/dataset"
	"github.com/KaramelBytes/resortgen/internal/export"
	"github.com/KaramelBytes/resortgen/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	genOut         string
	genSeed        uint64
	genXLSX        bool
	genQuiet       bool
	genDomainsFile string
)

var generateCmd = &cobra.Command{
	Use:       "generate [revenue|promo|all]",
	Short:     "Generate raw, clean, and flagged datasets",
	Long:      "Synthesize ground truth, inject the configured defects, remediate, and write raw/clean/flags CSVs (plus an optional XLSX workbook) under --out.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"revenue", "promo", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		target := "all"
		if len(args) == 1 {
			target = strings.ToLower(args[0])
		}

		out := c.OutputDir
		if cmd.Flags().Changed("out") {
			out = genOut
		}
		seed := c.Seed
		if cmd.Flags().Changed("seed") {
			seed = genSeed
		}
		withXLSX := c.XLSX
		if cmd.Flags().Changed("xlsx") {
			withXLSX = genXLSX
		}
		domainsFile := c.DomainsFile
		if cmd.Flags().Changed("domains-file") {
			domainsFile = genDomainsFile
		}

		cat := dataset.DefaultCatalog()
		if domainsFile != "" {
			loaded, err := dataset.LoadCatalog(domainsFile)
			if err != nil {
				return err
			}
			cat = loaded
		}
		names := cat.Names()
		if target != "all" {
			names = []string{target}
		}

		m := manifest.New(out, seed)
		for _, name := range names {
			d, err := cat.Get(name)
			if err != nil {
				return err
			}
			o := dataset.Run(d, seed)
			slog.Debug("pipeline complete",
				"domain", d.Name, "seed", seed,
				"ground_truth", len(o.GroundTruth), "raw", o.Summary.Raw,
				"clean", o.Summary.Clean, "flagged", o.Summary.Flagged,
				"duplicates", o.Summary.Duplicates, "negatives", o.Summary.Negatives,
				"gaps", len(o.Summary.Gaps))

			arts, err := export.WriteDomain(out, o)
			if err != nil {
				return err
			}
			if withXLSX {
				path := export.WorkbookPath(out, d)
				if err := export.WriteWorkbook(path, o); err != nil {
					return err
				}
				arts = append(arts, manifest.Artifact{Domain: d.Name, Kind: manifest.KindWorkbook, Path: path, Rows: len(o.Flagged)})
			}
			for _, a := range arts {
				slog.Info("artifact written", "domain", a.Domain, "kind", a.Kind, "path", a.Path, "rows", a.Rows)
				if !genQuiet {
					fmt.Printf("✓ Saved %-9s %s | rows=%d\n", strings.ToUpper(a.Kind)+":", a.Path, a.Rows)
				}
				m.Add(a)
			}
			m.Domains[d.Name] = manifest.DomainStats{
				GroundTruth: len(o.GroundTruth),
				Raw:         o.Summary.Raw,
				Clean:       o.Summary.Clean,
				Flagged:     o.Summary.Flagged,
				Duplicates:  o.Summary.Duplicates,
				Negatives:   o.Summary.Negatives,
				Gaps:        len(o.Summary.Gaps),
			}
			if !genQuiet && len(o.Summary.Gaps) > 0 {
				fmt.Printf("⚠ %s: %d expected keys missing from raw\n", d.Name, len(o.Summary.Gaps))
			}
		}
		if err := m.Save(); err != nil {
			return fmt.Errorf("save manifest: %w", err)
		}
		if !genQuiet {
			fmt.Printf("✓ Run %s (seed=%d) recorded in %s\n", m.RunID, seed, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "out", "output root directory (overrides config output_dir)")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 7, "random seed (overrides config seed)")
	generateCmd.Flags().BoolVar(&genXLSX, "xlsx", false, "also write an XLSX workbook per domain")
	generateCmd.Flags().BoolVarP(&genQuiet, "quiet", "q", false, "suppress per-file progress lines")
	generateCmd.Flags().StringVar(&genDomainsFile, "domains-file", "", "YAML file overriding or extending the built-in domains")
}
