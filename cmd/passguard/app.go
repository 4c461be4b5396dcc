package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/atinyakov/PassGuard/internal/command"
	"github.com/atinyakov/PassGuard/internal/config"
	"github.com/atinyakov/PassGuard/internal/crypto"
	"github.com/atinyakov/PassGuard/internal/db"
	"github.com/atinyakov/PassGuard/internal/logger"
	"github.com/atinyakov/PassGuard/internal/repository"
	"github.com/atinyakov/PassGuard/internal/vault"
)

// store is what the application needs from a storage backend.
type store interface {
	vault.Store
	db.OrphanSweeper
}

// app is a fully wired vault behind a dispatcher.
type app struct {
	log        *zap.Logger
	store      store
	dispatcher *command.Dispatcher
	closer     io.Closer
	cancel     context.CancelFunc
}

// openStore connects the backend selected by opts.Driver.
func openStore(opts *config.Options) (store, io.Closer, error) {
	switch opts.Driver {
	case config.DriverPostgres:
		conn, err := db.InitPostgres(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(conn), conn, nil
	case config.DriverSQLite:
		conn, err := db.InitSQLite(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteStore(conn), conn, nil
	case config.DriverBolt:
		conn, err := db.OpenBolt(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s, err := repository.NewBoltStore(conn)
		if err != nil {
			return nil, nil, errors.Join(err, conn.Close())
		}
		return s, conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver: %q", opts.Driver)
	}
}

// openApp wires logging, storage, cryptography and the vault from opts.
// The orphan sweeper runs until Close when opts.SweepInterval is positive.
func openApp(ctx context.Context, opts *config.Options) (*app, error) {
	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	alg, err := crypto.ParseAlgorithm(opts.Cipher)
	if err != nil {
		return nil, err
	}
	provider := crypto.NewProvider(crypto.Options{
		Algorithm: alg,
		Pepper:    []byte(opts.HashPepper),
		KeySalt:   []byte(opts.KeySalt),
	})

	s, closer, err := openStore(opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
	}

	vaultOpts := []vault.Option{vault.WithLogger(log.Log)}
	if opts.SignInRate > 0 {
		vaultOpts = append(vaultOpts, vault.WithSignInLimit(rate.Limit(opts.SignInRate), opts.SignInBurst))
	}
	v := vault.New(s, provider, vaultOpts...)

	ctx, cancel := context.WithCancel(ctx)
	if opts.SweepInterval > 0 {
		db.StartOrphanSweeper(ctx, s, opts.SweepInterval, log.Log)
	}

	log.Log.Debug("vault opened",
		zap.String("driver", opts.Driver),
		zap.String("cipher", alg.String()),
		zap.String("config", opts.ConfigPath),
	)

	return &app{
		log:        log.Log,
		store:      s,
		dispatcher: command.New(v),
		closer:     closer,
		cancel:     cancel,
	}, nil
}

// Close stops the sweeper and releases the store.
func (a *app) Close() error {
	a.cancel()
	_ = a.log.Sync()
	return a.closer.Close()
}
