package main

import (
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		// no logger yet; zap's example constructor never fails
		zap.Must(zap.NewProduction()).Fatal("configuration error", zap.Error(err))
	}

	log := mustLogger(cfg.LogLevel)
	defer log.Sync()

	db, err := openDB(cfg.DBDSN)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	store := newGormStore(db)
	codec := NewTokenCodec(cfg)
	auth := NewAuth(store, codec, cfg.BcryptCost, log)

	sweeper, err := startSweeper(cfg.SweepSchedule, store, log)
	if err != nil {
		log.Fatal("sweeper init failed", zap.Error(err))
	}
	defer func() { <-sweeper.Stop().Done() }()

	r := newRouter(&api{auth: auth, store: store, codec: codec, log: log})

	log.Info("server listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
