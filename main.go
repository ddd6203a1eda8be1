// Package main provides the entry point for the annotation browser.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"annotation-browser/internal/app"
	"annotation-browser/internal/config"
	"annotation-browser/internal/library"
	"annotation-browser/internal/logging"
	"annotation-browser/internal/render"
	"annotation-browser/internal/version"
	"annotation-browser/pkg/colorutil"
	"annotation-browser/ui/mainwindow"
	"annotation-browser/ui/prefs"
)

const (
	appID          = "io.github.annotation-browser"
	watchDebounce  = 500 * time.Millisecond
	defaultCfgPath = "config.yaml"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		dataDir string
		verbose bool
	)

	root := &cobra.Command{
		Use:          "annotation-browser",
		Short:        "Browse annotation libraries with a pan and zoom viewer",
		Version:      version.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			level, _ := logging.ParseLevel(cfg.LogLevel)
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := logging.New(os.Stderr, level)
			return run(cfg, logger)
		},
	}

	root.Flags().StringVarP(&cfgPath, "config", "c", defaultCfgPath, "path to the YAML config file")
	root.Flags().StringVarP(&dataDir, "data", "d", "", "data directory holding the libraries (overrides data_dir)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	return root
}

func run(cfg *config.Config, logger *charmlog.Logger) error {
	logger.Info("starting", "version", version.Version, "data", cfg.DataDir)

	renderOpts, err := cfg.Render.Options()
	if err != nil {
		return err
	}

	source, err := library.NewCachedSource(library.NewDirSource(cfg.DataDir, logging.Component(logger, "library")), cfg.CacheEntries)
	if err != nil {
		return err
	}
	state := app.NewState(source, logger)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(app.NewBrowserTheme(colorutil.Palette[1]))

	win := mainwindow.New(fyneApp, state, mainwindow.Options{
		FrameRate: cfg.FrameRate,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Render:    []render.Option{render.WithOptions(renderOpts)},
		Prefs:     prefs.Load(),
		Logger:    logger,
	})
	win.SetMaster()

	if cfg.Watch {
		watcher, err := library.NewWatcher(cfg.DataDir, watchDebounce, logger)
		if err != nil {
			logger.Warn("not watching data directory", "err", err)
		} else {
			watcher.OnChange(func() {
				logger.Info("data directory changed, refreshing", "dropped", source.Len())
				source.Purge()
				win.Refresh()
			})
			watcher.Start()
			defer watcher.Stop()
		}
	}

	win.Restore()
	win.ShowAndRun()
	return nil
}
