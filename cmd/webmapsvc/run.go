package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/joshuapare/webmap/internal/config"
	"github.com/joshuapare/webmap/internal/extract"
	"github.com/joshuapare/webmap/internal/logger"
	"github.com/joshuapare/webmap/internal/memory"
	"github.com/joshuapare/webmap/internal/readiness"
	"github.com/joshuapare/webmap/internal/service"
	"github.com/joshuapare/webmap/internal/version"
)

const moduleTitle = "WebMap Service"

// startupDelay lets the loader thread return before the service starts.
const startupDelay = 3 * time.Second

// env is what the host process provides to the service.
type env struct {
	Dir       string
	Mem       memory.Reader
	Base      uint64
	Namespace readiness.Namespace
	// Alert shows a message to the user; the target has no console.
	Alert func(msg string, isError bool)
}

// run starts the service and blocks until it stops. The readiness signal is
// claimed before anything else so the operator sees Starting during setup,
// and it is released on every exit path.
func run(ctx context.Context, e env) error {
	sig, err := readiness.Create(e.Namespace, readiness.DefaultName)
	if err != nil {
		if errors.Is(err, readiness.ErrAlreadyRunning) {
			e.Alert("Server already started", false)
		} else {
			e.Alert("Unable to init modules: "+err.Error(), true)
		}
		return err
	}
	defer sig.Close()

	if path, err := logger.Init(logger.Options{Enabled: true, LogDir: e.Dir, Prefix: "webmapsvc"}); err != nil {
		e.Alert("Unable to open log file: "+err.Error(), false)
	} else {
		defer logger.Sync()
		logger.Info("service module loaded", zap.String("log", path), zap.String("version", version.Current()))
	}
	log := logger.Named("service")

	cfg, err := config.Load(filepath.Join(e.Dir, config.FileName))
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", service.ErrSetup, err)
		log.Error("configuration rejected", zap.Error(err))
		e.Alert("Unable to init modules: "+err.Error(), true)
		return err
	}

	ex := extract.New(extract.Target{
		Mem:               e.Mem,
		Base:              e.Base,
		NameTableOffset:   cfg.NameTableOffset,
		ObjectArrayOffset: cfg.ObjectArrayOffset,
	}, extract.Options{ManagerName: cfg.ManagerName, Logger: logger.Named("extract")})

	if snap := ex.Extract(); snap.Unresolved {
		log.Info("unable to find map manager during setup", zap.String("reason", snap.Reason))
	}

	srv := service.New(ex, service.Options{
		Config:    cfg,
		Dir:       e.Dir,
		Logger:    log,
		OnWarning: func(msg string) { e.Alert(msg, true) },
	})
	if err := srv.Run(ctx, sig); err != nil {
		log.Error("service failed", zap.Error(err))
		e.Alert("Unable to init modules: "+err.Error(), true)
		return err
	}
	return nil
}
