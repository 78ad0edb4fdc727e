package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [post-id]",
	Short: "Render a post body to HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.blog.GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		body, err := a.blog.Render(post)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "<!-- %s by %s, %s, %s -->\n", post.Title, post.Author, post.PublishedDate(), post.EstimatedReadTime())
		fmt.Fprintf(out, "<img src=%q alt=%q>\n", a.blog.CoverImage(post), post.Title)
		author := a.blog.AuthorProfile(post.Author)
		fmt.Fprintf(out, "<!-- %s, %s: %s -->\n", author.Name, author.Title, author.Bio)
		if tags := post.FreeTags(); len(tags) > 0 {
			fmt.Fprintf(out, "<!-- tags: %s -->\n", strings.Join(tags, ", "))
		}
		fmt.Fprint(out, body)
		return nil
	},
}
