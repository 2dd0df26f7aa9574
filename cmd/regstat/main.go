package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/regstat/internal/api"
	"github.com/ougirez/regstat/internal/pkg/config"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/ougirez/regstat/internal/pkg/store"
	"github.com/ougirez/regstat/internal/pkg/store/xpgx"
	"github.com/ougirez/regstat/internal/service/records"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Load(); err != nil {
		logger.Fatal(ctx, err)
	}
	if err := logger.Init(viper.GetString(constants.ViperLogLevelKey)); err != nil {
		logger.Fatal(ctx, err)
	}
	defer logger.Sync()

	if err := run(ctx); err != nil {
		logger.Fatal(ctx, err)
	}
}

func run(ctx context.Context) error {
	dsn, err := config.RequireString(constants.ViperPostgresDSNKey)
	if err != nil {
		return err
	}

	pgPool, pool, err := xpgx.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	err = backoff.Retry(
		func() error {
			migrateErr := store.Migrate(pgPool)
			if migrateErr != nil {
				logger.Warnf(ctx, "store.Migrate: %s", migrateErr.Error())
			}
			return migrateErr
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 15), ctx),
	)
	if err != nil {
		return err
	}

	recordStore := store.NewStore(pool)
	feed := records.NewFeed()
	poller := records.NewPoller(recordStore, feed, viper.GetDuration(constants.ViperRefreshIntervalKey))
	if err := poller.LoadInitial(ctx); err != nil {
		return err
	}

	svc, err := api.NewAPIService(recordStore, feed, poller)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		addr := viper.GetString(constants.ViperHTTPAddrKey)
		logger.Infof(egCtx, "listening on %s", addr)
		return svc.Serve(addr)
	})
	eg.Go(func() error {
		return poller.Run(egCtx)
	})
	eg.Go(func() error {
		return svc.RunScreenSweeper(egCtx)
	})
	eg.Go(func() error {
		<-egCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return svc.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
