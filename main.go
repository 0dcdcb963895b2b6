package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quill/app/config"
	"quill/app/logging"
	"quill/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command named in os.Args.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	switch cmd := strings.ToLower(os.Args[1]); cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("quill version %s\n", CliVersion)
	default:
		exit(run(append([]string{cmd}, os.Args[2:]...)))
	}
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return 1
	}
	log, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return service.HandleCommand(ctx, cfg, log, args)
}

func printHelp() {
	service.PrintHelp()
}
