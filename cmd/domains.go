package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/resortgen/internal/dataset"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var domainsFile string

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Inspect the domain configuration tables",
}

var domainsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadDomains()
		if err != nil {
			return err
		}
		for _, name := range cat.Names() {
			d, _ := cat.Get(name)
			n := len(d.Dates()) * len(d.Properties) * len(d.Categories)
			if len(d.Channels) > 0 {
				n *= len(d.Channels)
			}
			fmt.Printf("- %s: %s..%s, %d properties, %d categories, %d channels (%d ground-truth rows) -> %s\n",
				d.Name, d.Start.Format(dataset.DateLayout), d.End.Format(dataset.DateLayout),
				len(d.Properties), len(d.Categories), len(d.Channels), n, d.Dir)
		}
		return nil
	},
}

var domainsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one domain table as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadDomains()
		if err != nil {
			return err
		}
		d, err := cat.Get(args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode domain: %w", err)
		}
		return enc.Close()
	},
}

// loadDomains resolves the catalog from --domains-file or the configured file.
func loadDomains() (*dataset.Catalog, error) {
	path := domainsFile
	if path == "" {
		path = currentConfig().DomainsFile
	}
	return dataset.LoadCatalog(path)
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(domainsListCmd)
	domainsCmd.AddCommand(domainsShowCmd)
	domainsCmd.PersistentFlags().StringVar(&domainsFile, "domains-file", "", "YAML file overriding or extending the built-in domains")
}
