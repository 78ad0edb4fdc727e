package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hypergopher/blogcore"
)

var likeViewer string

func init() {
	likeCmd.Flags().StringVar(&likeViewer, "viewer", "", "id of the viewer toggling the like")
	rootCmd.AddCommand(likeCmd)
}

var likeCmd = &cobra.Command{
	Use:   "like [post-id]",
	Short: "Toggle a viewer's like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appOptions{identity: blogcore.StaticIdentity(likeViewer)})
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.blog.ToggleLike(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		state := "unliked"
		if post.IsLikedBy(likeViewer) {
			state = "liked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %q (%d likes)\n", likeViewer, state, post.Title, post.LikeCount())
		return nil
	},
}
