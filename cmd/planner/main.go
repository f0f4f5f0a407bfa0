package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/tripkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/tripkeeper/internal/cli"
	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/config"
	"github.com/dmitrijs2005/tripkeeper/internal/itinerary"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/plans"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/slots"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
	"github.com/dmitrijs2005/tripkeeper/internal/storage"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer db.Close()

	store, lock, err := openStore(ctx, slots.NewSQLiteRepository(db), cfg.Encrypt)
	if err != nil {
		return err
	}
	defer lock()

	lines, err := cli.NewLineReader(cfg.HistoryFile)
	if err != nil {
		return err
	}
	defer lines.Close()

	svc := services.NewPlannerService(plans.NewSlotRepository(store, loc), itinerary.New(), logger, services.Options{
		ViewCacheTTL: cfg.ViewCacheTTL,
		Location:     loc,
	})
	if err := svc.Load(ctx); err != nil {
		if !common.IsCorrupt(err) {
			return err
		}
		fmt.Println("Stored plans could not be read; starting with an empty list.")
	}

	cli.NewApp(svc, cfg, lines, os.Stdout).Run(ctx)
	return nil
}

// openStore unlocks the sealed store when encryption is requested and refuses
// to open a sealed store without it.
func openStore(ctx context.Context, raw slots.Repository, encrypt bool) (slots.Repository, func(), error) {
	sealed, err := slots.IsSealed(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	if !encrypt {
		if sealed {
			return nil, nil, errors.New("the database is encrypted; start with -x")
		}
		return raw, func() {}, nil
	}

	pw, err := cli.GetPassword(os.Stdout, "Passphrase: ")
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(pw)

	repo, err := slots.Unlock(ctx, raw, pw)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Lock, nil
}
