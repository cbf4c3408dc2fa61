package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-search/internal/client"
	"inventory-search/internal/config"
	"inventory-search/internal/session"
	"inventory-search/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(client.New(cfg.APIBaseURL, cfg.RequestTimeout), log)

	fmt.Println("Inventory Search")
	fmt.Printf("Search service: %s\n", cfg.APIBaseURL)
	fmt.Println("Type help for commands, quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		err := s.Execute(ctx, scanner.Text(), os.Stdout)
		if errors.Is(err, session.ErrQuit) {
			break
		}
		if err != nil {
			fmt.Println(err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	fmt.Println("\nGoodbye!")
}
