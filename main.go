package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"betpool/cmd"
	"betpool/config"
	"betpool/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "serve":
		err = serve()
	case "migrate":
		err = handleMigrationCommand(os.Args[2:])
	case "deposit":
		err = handleDeposit(os.Args[2:])
	default:
		err = fmt.Errorf("unknown command: %s (expected serve, migrate or deposit)", command)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	return cmd.Run(ctx)
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: betpool migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

// handleDeposit credits a wallet from the command line. Deposits have no HTTP route.
func handleDeposit(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: betpool deposit <user-id> <amount>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[0], err)
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	ctx := context.Background()
	cfg := config.Get()
	cmd.ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Events are not delivered from admin commands
	app := cmd.NewApp(db, nil, nil)
	result := app.Deposit(ctx, userID, amount)
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"amount":        amount.StringFixed(2),
		"balance_after": result.Payload.BalanceAfter.StringFixed(2),
	}).Info("Deposit recorded")
	return nil
}
