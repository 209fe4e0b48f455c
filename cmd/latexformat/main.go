package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"unlatex"
	"unlatex/internal/config"
	"unlatex/internal/crawler"
	"unlatex/internal/engine"
	"unlatex/internal/git"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	workdir    string
	configFile string
	bundle     string
	output     string
	jobs       int
	debug      bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	var (
		overwrite    bool
		printWidth   = 120
		useTabs      bool
		tabWidth     = 2
		documentOnly bool
		gitChanged   string
	)

	var cmdRoot = &cobra.Command{
		Use:          "latexformat [files...]",
		Short:        "Format LaTeX documents",
		Long:         "Format LaTeX files, or stdin when no file is given. Directories are searched for .tex, .sty and .cls files.",
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.workdir != "" {
				if err := os.Chdir(g.workdir); err != nil {
					return fmt.Errorf("workdir: %w", err)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, err := g.runner(cmd)
			if err != nil {
				return err
			}

			opts := engine.FormatOptions{
				PrintWidth:   cfg.Format.PrintWidth,
				UseTabs:      cfg.Format.UseTabs,
				TabWidth:     cfg.Format.TabWidth,
				DocumentOnly: cfg.Format.DocumentOnly,
			}
			flags := cmd.Flags()
			if flags.Changed("print-width") {
				opts.PrintWidth = printWidth
			}
			if flags.Changed("use-tabs") {
				opts.UseTabs = useTabs
			}
			if flags.Changed("tab-width") {
				opts.TabWidth = tabWidth
			}
			if flags.Changed("document-only") {
				opts.DocumentOnly = documentOnly
			}

			files := args
			if gitChanged != "" {
				changed, err := git.ChangedFiles(".", gitChanged)
				if err != nil {
					return err
				}
				changed = crawler.NewCrawler(r.fs).Sources(changed)
				if len(changed) == 0 && len(files) == 0 {
					r.log.Info("no changed LaTeX files", "since", gitChanged)
					return nil
				}
				files = append(files, changed...)
			}

			return r.format(files, g.output, overwrite, opts)
		},
	}

	pf := cmdRoot.PersistentFlags()
	pf.StringVar(&g.workdir, "workdir", "", "working directory [default: current directory]")
	pf.StringVarP(&g.configFile, "config", "c", config.DefaultPath, "load configuration from file")
	pf.StringVar(&g.bundle, "bundle", "", "path to the document engine bundle")
	pf.StringVarP(&g.output, "output", "o", "", "output file [default: stdout]")
	pf.IntVar(&g.jobs, "jobs", runtime.GOMAXPROCS(0), "number of files formatted in parallel")
	pf.BoolVar(&g.debug, "debug", false, "log debugging information")
	pf.BoolVar(&g.quiet, "quiet", false, "log less information")

	f := cmdRoot.Flags()
	f.BoolVarP(&overwrite, "overwrite", "w", false, "overwrite the input files")
	f.IntVar(&printWidth, "print-width", printWidth, "maximum line length")
	f.BoolVar(&useTabs, "use-tabs", false, "indent with tabs")
	f.IntVar(&tabWidth, "tab-width", tabWidth, "number of spaces per indentation level")
	f.BoolVarP(&documentOnly, "document-only", "d", false, "only format the document body")
	f.StringVar(&gitChanged, "git-changed", "", "also format LaTeX files changed since this git ref")

	cmdRoot.AddCommand(cmdParse(&g))
	cmdRoot.AddCommand(cmdJParse(&g))
	cmdRoot.AddCommand(cmdVersion())
	return cmdRoot
}

// runner loads the configuration and builds the engine pool shared by the
// commands.
func (g *globalFlags) runner(cmd *cobra.Command) (*runner, *config.Config, error) {
	cfg, err := config.LoadConfig(g.configFile)
	if err != nil {
		return nil, nil, err
	}
	if g.bundle != "" {
		cfg.Engine.Bundle = g.bundle
	}

	level := cfg.SlogLevel()
	switch {
	case g.debug:
		level = slog.LevelDebug
	case g.quiet:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fs := afero.NewOsFs()
	opts, err := unlatex.OptionsFromConfig(fs, cfg)
	if err != nil {
		return nil, nil, err
	}
	opts.Logger = logger

	jobs := max(g.jobs, 1)
	logger.Debug("engine pool", "size", jobs, "bundle", cfg.Engine.Bundle)
	return &runner{
		fs:      fs,
		stdin:   cmd.InOrStdin(),
		stdout:  cmd.OutOrStdout(),
		log:     logger,
		backend: poolBackend{pool: engine.NewPool(jobs, opts)},
		jobs:    jobs,
	}, cfg, nil
}

func cmdParse(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:          "parse [file]",
		Short:        "print the document tree of a file (or stdin) as JSON",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.runner(cmd)
			if err != nil {
				return err
			}
			return r.parse(firstArg(args), g.output)
		},
	}
}

func cmdJParse(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:          "jparse [file]",
		Short:        "print the engine's own JSON parse of a file (or stdin)",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := g.runner(cmd)
			if err != nil {
				return err
			}
			return r.jparse(firstArg(args), g.output)
		},
	}
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Fprintln(cmd.OutOrStdout(), unlatex.Version().String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), unlatex.Version().Core())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
