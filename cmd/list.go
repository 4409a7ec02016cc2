package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/resortgen/internal/manifest"
	"github.com/KaramelBytes/resortgen/internal/utils"
	"github.com/spf13/cobra"
)

var listStats bool

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List artifacts recorded in a run manifest",
	Long:  "List the files of a generation run. dir may be the output root or any path below it; defaults to the configured output_dir.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := currentConfig().OutputDir
		if len(args) == 1 {
			start = args[0]
		}
		root, err := utils.FindRunRoot(start)
		if err != nil {
			return fmt.Errorf("no run found from %s: %w", start, err)
		}
		m, err := manifest.Load(root)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s (seed=%d, %s)\n", m.RunID, m.Seed, m.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
		arts := m.Sorted()
		if len(arts) == 0 {
			fmt.Println("(no artifacts)")
		}
		for _, a := range arts {
			fmt.Printf("- [%s] %-8s %s (rows=%d)\n", a.Domain, a.Kind, filepath.Join(root, a.Path), a.Rows)
		}
		if listStats {
			names := make([]string, 0, len(m.Domains))
			for name := range m.Domains {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				s := m.Domains[name]
				fmt.Printf("%s: truth=%d raw=%d clean=%d flagged=%d duplicates=%d negatives=%d gaps=%d\n",
					name, s.GroundTruth, s.Raw, s.Clean, s.Flagged, s.Duplicates, s.Negatives, s.Gaps)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listStats, "stats", false, "also print per-domain remediation counts")
}
