package main

import (
	"context"
	"fmt"
	"os"

	"github.com/philipcowcer-eng/LoadBalance/internal/app"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: db_restore <snapshot filename>")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Open(ctx, cfg, nil, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	safety, err := a.Snapshots.Restore(ctx, os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s; previous state saved as %s.\n", os.Args[1], safety)
}
