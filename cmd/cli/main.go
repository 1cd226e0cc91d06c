package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/orgchat/internal/client/api"
	"github.com/dmitrijs2005/orgchat/internal/client/cli"
	"github.com/dmitrijs2005/orgchat/internal/client/config"
	"github.com/dmitrijs2005/orgchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orgchat/internal/client/session"
)

func main() {
	os.Exit(run())
}

func run() int {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 2
	}

	db, err := session.InitDatabase(ctx, cfg.SessionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer db.Close()

	store := session.NewStore(metadata.NewSQLiteRepository(db))
	client := api.NewClient(cfg.ServerURL, cfg.Timeout)

	app := cli.NewApp(client, store, os.Stdin, os.Stdout)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
