// cmd/sprintdeck/main.go
//
// Entry point for the dashboard client. Running `sprintdeck` in a project
// directory initializes the .sprintdeck folder, connects to boardd (falling
// back to the built-in offline dataset when it is unreachable), and starts
// the TUI.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sprintdeck/internal/config"
	"sprintdeck/internal/datasource"
	"sprintdeck/internal/logging"
	"sprintdeck/internal/realtime"
	"sprintdeck/internal/store"
	"sprintdeck/internal/tui"
)

func main() {
	serverFlag := flag.String("server", "", "boardd URL (overrides .sprintdeck/config.yaml)")
	offlineFlag := flag.Bool("offline", false, "skip boardd and use the built-in dataset")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitDeckDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .sprintdeck directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	var source datasource.Source
	if *offlineFlag {
		source = datasource.NewFallback()
		logger.Printf("main: running offline")
	} else {
		serverURL := cfg.ServerURL()
		if *serverFlag != "" {
			serverURL = *serverFlag
		}
		source = datasource.NewHTTPSource(serverURL,
			datasource.HTTPWithLogger(logger),
			datasource.HTTPWithPollInterval(cfg.PollInterval()),
		)
		logger.Printf("main: boardd endpoint %s", serverURL)
	}

	st := store.New(source, store.WithLogger(logger))

	app, err := tui.NewApp(cfg, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building dashboard: %v\n", err)
		os.Exit(1)
	}

	// Realtime updates are published into the feed, which dedupes replayed
	// event IDs and buffers early arrivals, then pumped into the store. The
	// TUI observes the resulting change notifications through its own
	// store subscription.
	feed := realtime.NewFeed(realtime.FeedWithLogger(logger))
	stop, err := source.SubscribeUpdates(feed.Publish)
	if err != nil {
		logger.Printf("main: realtime subscription unavailable: %v", err)
	} else {
		defer stop()
	}
	sub := feed.Subscribe()
	defer sub.Close()
	pumpCtx, cancelPump := context.WithCancel(context.Background())
	defer cancelPump()
	go realtime.Pump(pumpCtx, sub, st.ApplyUpdate)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
