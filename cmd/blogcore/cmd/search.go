package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypergopher/blogcore"
)

// fullTextSearcher is implemented by stores with a ranked full-text index.
type fullTextSearcher interface {
	FullTextSearch(ctx context.Context, queryString string, limit int) ([]*blogcore.Post, error)
}

var (
	searchUseIndex bool
	searchLimit    int
)

func init() {
	searchCmd.Flags().BoolVar(&searchUseIndex, "index", false, "use the store's full-text index (bbolt only)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of indexed results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "List posts matching a term",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		term := strings.Join(args, " ")

		var posts []*blogcore.Post
		if searchUseIndex {
			searcher, ok := a.store.(fullTextSearcher)
			if !ok {
				return fmt.Errorf("store %q has no full-text index", a.cfg.Store.Driver)
			}
			posts, err = searcher.FullTextSearch(cmd.Context(), term, searchLimit)
		} else {
			posts, err = a.blog.Search(cmd.Context(), term)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d results for %q:\n", len(posts), term)
		printPosts(cmd, posts)
		return nil
	},
}
