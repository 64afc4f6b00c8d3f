package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipcowcer-eng/LoadBalance/internal/app"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Open(ctx, cfg, nil, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	info, err := a.Snapshots.Create(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s (%.2f KB)\n", info.Filename, info.SizeKB)
}
