// Command linemon is a terminal dashboard for the assembly line sensor
// service: it shows summary metrics and the full record table, and lets
// the operator add manual readings. With -browse it opens the exported
// CSV snapshots instead.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/linemon/internal/client"
	"github.com/luki/linemon/internal/config"
	"github.com/luki/linemon/internal/dashboard"
	"github.com/luki/linemon/internal/viewer"
)

func main() {
	var configPath, endpoint string
	var browse bool
	flag.StringVar(&configPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&endpoint, "endpoint", "", "Data service URL (overrides config)")
	flag.BoolVar(&browse, "browse", false, "Browse exported CSV snapshots instead of the live dashboard")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
		if err := cfg.Validate(); err != nil {
			log.Fatalf("endpoint: %v", err)
		}
	}

	// The TUI owns the terminal, so log lines go to a file or nowhere.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "linemon")
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	if browse {
		viewer.Run(cfg.ExportDir)
		return
	}

	svc := client.New(cfg.Endpoint, cfg.Timeout)
	log.Printf("[main] endpoint %s", svc.Endpoint())

	p := tea.NewProgram(
		dashboard.New(svc, cfg),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
