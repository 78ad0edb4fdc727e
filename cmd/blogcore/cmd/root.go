package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypergopher/blogcore"
	"github.com/hypergopher/blogcore/bboltstore"
	"github.com/hypergopher/blogcore/config"
	"github.com/hypergopher/blogcore/sqlitestore"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogcore",
	Short: "Admin tool for the blogcore post store",
	Long: `blogcore imports markdown posts into the configured store and shows the
home page curation, search results, rendered posts and tag counts.`,
	SilenceUsage: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (yaml or toml)")
}

// app holds everything a subcommand needs. Close releases the store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  blogcore.PostStore
	blog   *blogcore.Blog
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", slog.String("error", err.Error()))
	}
}

type appOptions struct {
	contentDir string
	identity   blogcore.IdentityProvider
	noPreload  bool
}

// newApp loads the config and opens the store. The memory store is filled from content.dir, since
// nothing else would populate it.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if opts.contentDir != "" {
		cfg.Content.Dir = opts.contentDir
	}

	logger := blogcore.NewLogger(cfg.Log.Level, cfg.Log.Format)

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var fs blogcore.FileSystemManager
	if cfg.Content.Dir != "" {
		fs = blogcore.NewLocalFileSystemManager(cfg.Content.Dir, nil, blogcore.FrontmatterFormat(cfg.Content.Frontmatter))
	}

	blog, err := blogcore.NewBlog(blogcore.Options{
		Authors:          cfg.Authors,
		DefaultAlt:       cfg.Render.DefaultAlt,
		FeaturedCount:    cfg.Curation.Featured,
		FileSystem:       fs,
		Identity:         opts.identity,
		LatestCount:      cfg.Curation.Latest,
		Logger:           logger,
		PlaceholderCover: cfg.Render.PlaceholderCover,
		Store:            store,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, store: store, blog: blog}

	if cfg.Store.Driver == config.DriverMemory && fs != nil && !opts.noPreload {
		if _, err := blog.Import(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (blogcore.PostStore, error) {
	var store blogcore.PostStore

	switch cfg.Store.Driver {
	case config.DriverBbolt:
		store = bboltstore.New(cfg.Store.DataDir, logger)
	case config.DriverSQLite:
		if cfg.Store.DataDir != "" {
			if err := os.MkdirAll(cfg.Store.DataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err := sqlitestore.OpenDB(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		store = sqlitestore.New(db, "posts")
	default:
		store = blogcore.NewMemoryPostStore()
	}

	if err := store.Init(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Store.Driver, err)
	}

	return store, nil
}

func printPosts(cmd *cobra.Command, posts []*blogcore.Post) {
	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, post := range posts {
		fmt.Fprintf(out, "  %-36s  %-12s  %s  [%d likes]\n", post.ID, post.PublishedDate(), post.Title, post.LikeCount())
	}
}
