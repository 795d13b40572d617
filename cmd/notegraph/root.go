package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph"
	"github.com/aretw0/notegraph/pkg/core"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose    bool
	configPath string
	adapter    string
	path       string
	namespace  string
	gitless    bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notegraph",
		Short: "A personal knowledge base of tagged, wiki-linked notes",
		Long: `notegraph stores notes that carry #tags and [[wiki links]].
It renders notes safely, resolves backlinks and keeps the collection in a
vault directory (optionally versioned with git) or a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if o.verbose {
				level = slog.LevelDebug
			}
			o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(o.logger)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&o.configPath, "config", "", "Config file (default <vault>/"+notegraph.ConfigFile+")")
	flags.StringVar(&o.adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	flags.StringVar(&o.path, "path", "", "Vault directory or database file")
	flags.StringVar(&o.namespace, "namespace", "", "Storage key of the note collection (default "+core.DefaultNamespace+")")
	flags.BoolVar(&o.gitless, "gitless", false, "Disable git versioning of fs vaults")

	cmd.AddCommand(
		newInitCmd(o),
		newWriteCmd(o),
		newReadCmd(o),
		newListCmd(o),
		newDeleteCmd(o),
		newBacklinksCmd(o),
		newLinksCmd(o),
		newTagsCmd(o),
		newTitlesCmd(o),
		newOpenCmd(o),
		newExportCmd(o),
		newImportCmd(o),
		newServeCmd(o),
		newWatchCmd(o),
		newSyncCmd(o),
		newVersionCmd(),
	)
	return cmd
}

// resolveConfig merges the config file, the environment and the flags.
// Flags win over the environment, which wins over the file.
func (o *rootOptions) resolveConfig(cmd *cobra.Command) (notegraph.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return notegraph.Config{}, fmt.Errorf("get working directory: %w", err)
	}

	root, err := notegraph.FindVaultRoot(cwd)
	if err != nil {
		root = cwd
	}

	cfgFile := o.configPath
	if cfgFile == "" {
		cfgFile = filepath.Join(root, notegraph.ConfigFile)
	}

	cfg, err := notegraph.LoadConfig(cfgFile)
	if err != nil {
		return notegraph.Config{}, err
	}
	if !filepath.IsAbs(cfg.Path) && cfg.Path != "" {
		cfg.Path = filepath.Join(root, cfg.Path)
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = o.adapter
	}
	if flags.Changed("path") {
		if cfg.Path, err = filepath.Abs(o.path); err != nil {
			return notegraph.Config{}, err
		}
	}
	if flags.Changed("namespace") {
		cfg.Namespace = o.namespace
	}
	if flags.Changed("gitless") {
		versioning := !o.gitless
		cfg.Versioning = &versioning
	}

	if cfg.Path == "" {
		cfg.Path = root
		if cfg.Adapter == notegraph.AdapterSQLite {
			cfg.Path = filepath.Join(root, ".notegraph", "notes.db")
		}
	}
	return cfg, nil
}

// openService builds the service described by the flags and config.
func (o *rootOptions) openService(cmd *cobra.Command, extra ...notegraph.Option) (*core.Service, notegraph.Config, error) {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}

	opts := append(cfg.Options(), notegraph.WithLogger(o.log()))
	opts = append(opts, extra...)

	svc, err := notegraph.New(cmd.Context(), cfg.Path, opts...)
	if err != nil {
		return nil, cfg, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	return svc, cfg, nil
}

func (o *rootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}
