// Command kivo loads the configured backend, runs the finance engine over
// it and prints the dashboard state: accounts with derived balances, the
// summary and the most recent transactions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kivo/internal/amqp"
	"kivo/internal/backend"
	"kivo/internal/config"
	"kivo/internal/core"
	"kivo/internal/finance"
	"kivo/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kivo:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	accountID := flag.String("account", "", "scope the dashboard to one account id")
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.Logger).CreateSource(ctx, backendCfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Event publishing is optional; the dashboard works without a broker.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		}
	}

	svc := finance.NewService(result.Source, finance.Options{
		MutateLatency: cfg.MutateLatency,
		Events:        events,
		Logger:        logger.WithComponent("finance"),
	})
	defer svc.Close()

	if err := svc.Refetch(ctx); err != nil {
		return err
	}
	if *accountID != "" {
		svc.SelectAccount(ctx, *accountID)
	}

	printDashboard(svc)
	return nil
}

func printDashboard(svc *finance.Service) {
	fmt.Println("Accounts")
	for _, a := range svc.Accounts() {
		fmt.Printf("  %s %-20s %s\n", a.Icon, a.Name, a.Balance)
	}

	sum := svc.Summary()
	fmt.Println("\nSummary")
	fmt.Printf("  total balance  %s\n", sum.TotalBalance)
	fmt.Printf("  today          +%s / -%s\n", sum.TodayIncome, sum.TodayExpense)
	fmt.Printf("  this month     +%s / -%s\n", sum.MonthIncome, sum.MonthExpense)

	fmt.Println("\nTransactions")
	for _, t := range svc.Transactions() {
		sign := "+"
		if t.Type == core.Expense {
			sign = "-"
		}
		fmt.Printf("  %s  %-24s %s%s\n", t.Date.Format("2006-01-02"), t.Description, sign, t.EffectiveAmount())
	}
}
