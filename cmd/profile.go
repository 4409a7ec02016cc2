package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/resortgen/internal/analysis"
	"github.com/KaramelBytes/resortgen/internal/utils"
	"github.com/spf13/cobra"
)

var (
	profOutputPath string
	profSampleRows int
	profMaxRows    int
	profGroupBy    []string
	profOutliers   bool
	profOutlierThr float64
	profSheetName  string
	profSheetIndex int
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a generated CSV/XLSX and flag outliers",
	Long:  "Summarize columns (type, missing, min/max/mean, negatives) and count robust MAD outliers, optionally per group, e.g. --group-by department to surface a one-day spike.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := analysis.DefaultOptions()
		if profSampleRows >= 0 {
			opt.SampleRows = profSampleRows
		}
		opt.MaxRows = profMaxRows
		opt.GroupBy = profGroupBy
		opt.Outliers = profOutliers
		if profOutlierThr > 0 {
			opt.OutlierThreshold = profOutlierThr
		}

		var (
			rep *analysis.Report
			err error
		)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			rep, err = analysis.AnalyzeXLSX(path, opt, profSheetName, profSheetIndex)
		default:
			rep, err = analysis.AnalyzeCSV(path, opt)
		}
		if err != nil {
			return err
		}
		slog.Debug("profiled", "file", path, "rows", rep.Rows, "columns", len(rep.Cols), "groups", len(rep.Groups))
		md := rep.Markdown()

		if profOutputPath == "" {
			fmt.Println(md)
			return nil
		}
		if err := utils.EnsureDir(filepath.Dir(profOutputPath)); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(profOutputPath, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("✓ Wrote profile to %s\n", profOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	profileCmd.Flags().StringSliceVar(&profGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	profileCmd.Flags().BoolVar(&profOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	profileCmd.Flags().Float64Var(&profOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	profileCmd.Flags().StringVar(&profSheetName, "sheet-name", "", "XLSX: sheet name to profile")
	profileCmd.Flags().IntVar(&profSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
