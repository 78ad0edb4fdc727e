package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [content-dir]",
	Short: "Import markdown posts into the store",
	Long: `Import walks the content directory (content.dir, or the argument) and creates or
updates one post per markdown file. Running it twice is safe.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := appOptions{noPreload: true}
		if len(args) == 1 {
			opts.contentDir = args[0]
		}

		a, err := newApp(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Content.Dir == "" {
			return fmt.Errorf("no content directory: pass one or set content.dir")
		}

		count, err := a.blog.Import(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts from %s\n", count, a.cfg.Content.Dir)
		return nil
	},
}
