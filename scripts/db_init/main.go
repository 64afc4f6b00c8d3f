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

	a, err := app.Open(ctx, cfg, nil, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	created, err := a.Service.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Admin bootstrap error: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("Created admin account %q.\n", cfg.Bootstrap.AdminUsername)
	}

	fmt.Println("Database initialized successfully.")
}
