// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the prediction engine as a msgpack IPC server or as an
interactive terminal for debugging.

predict loads a word dictionary and a shortcode index built by predict-build
and drives one prediction session per attached input context. A session
echoes typed characters, offers word completions on Ctrl+W and symbol
lookup by shortcode on Ctrl+E.

# Usage

Start the server with default settings:

	predict

Use a custom data directory and enable debug mode:

	predict -data /path/to/artifacts -d

Run in CLI mode for interactive testing:

	predict -c

Serve words from a plain text list instead of dictionary.fst:

	predict -words /usr/share/dict/words

The data directory must contain dictionary.fst, shortcodes.fst and
symbols.bin. Any missing or corrupt artifact stops startup.

# Configuration

Runtime configuration lives in predict.toml:

	[engine]
	max_words = 64
	max_symbols = 64
	page_size = 5

	[keys]
	symbol_mode = "e"
	word_mode = "w"

	[data]
	dir = "data"

The config file is created with defaults if it doesn't exist. In server mode
the file is watched, and a changed page size applies to sessions attached
after the change.

# Command Line Flags

	-data string
	    Directory containing the index artifacts (default from config)
	-config string
	    Path to a config file
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-words string
	    Plain text word list to serve instead of dictionary.fst
	-paths
	    Print data directory resolution details and exit
	-limit int
	    Maximum word candidates per lookup (overrides config)
	-reset-config
	    Rewrite the default config file and exit
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/predict/internal/cli"
	"github.com/bastiangx/predict/internal/logger"
	"github.com/bastiangx/predict/internal/utils"
	"github.com/bastiangx/predict/pkg/config"
	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/server"
	"github.com/bastiangx/predict/pkg/source"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "predict"
	gh      = "https://github.com/bastiangx/predict"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between the packages.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "", "Directory containing the index artifacts")
	configPath := flag.String("config", "", "Path to config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	wordsFile := flag.String("words", "", "Plain text word list to serve instead of dictionary.fst")
	showPaths := flag.Bool("paths", false, "Print data directory resolution details and exit")
	limit := flag.Int("limit", 0, "Maximum word candidates per lookup (overrides config)")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the default config file and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		log.Info("Config file rebuilt with defaults")
		os.Exit(0)
	}

	cfg, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))
	if *limit > 0 {
		cfg.Engine.MaxWords = *limit
	}

	pathResolver, err := utils.NewPathResolver(AppName, dictionary.ShortcodesFile)
	if err != nil {
		log.Error("Either env is not set or system is not supported")
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	requested := *dataDir
	if requested == "" {
		requested = cfg.Data.Dir
	}
	if *showPaths {
		log.Print("Path diagnostics", "report", pathResolver.DiagnosePathIssues(requested))
		os.Exit(0)
	}
	resolvedDataDir := pathResolver.GetDataDir(requested)
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	engine, err := loadEngine(cfg, resolvedDataDir, *wordsFile)
	if err != nil {
		log.Error("Did you forget to run predict-build?")
		log.Fatalf("Failed to load indexes: %v", err)
	}

	if *cliMode {
		inputHandler := cli.NewInputHandler(engine, cfg.Engine.PageSize, cfg.Bindings())
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	sigHandler()
	srv := server.NewServer(engine,
		server.WithPageSize(cfg.Engine.PageSize),
		server.WithBindings(cfg.Bindings()),
	)

	if activeConfig != "" {
		watcher, err := config.NewWatcher(activeConfig, cfg)
		if err != nil {
			log.Warnf("Config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			watcher.OnChange(func(c *config.Config) {
				srv.SetPageSize(c.Engine.PageSize)
			})
		}
	}

	showStartupInfo(resolvedDataDir, engine)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadEngine loads the artifacts, or the symbol artifacts plus an in-memory
// index of wordsFile when one is given.
func loadEngine(cfg *config.Config, dataDir, wordsFile string) (*suggest.Engine, error) {
	paths := cfg.Paths(dataDir)
	if wordsFile == "" {
		return suggest.LoadPaths(paths, cfg.Limits())
	}

	words, err := source.ReadWordFile(wordsFile)
	if err != nil {
		return nil, err
	}
	words, dups := source.SortWords(words)
	if dups > 0 {
		log.Warnf("Dropped %d duplicate words from %s", dups, wordsFile)
	}
	idx, err := suggest.NewTrieIndex(words)
	if err != nil {
		return nil, err
	}
	return suggest.LoadWithWords(idx, paths, cfg.Limits())
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ predict ] word and symbol prediction")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir string, engine *suggest.Engine) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := engine.Stats()
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("words: %d, symbols: %d", stats["words"], stats["symbols"])
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
