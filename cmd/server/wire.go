//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"notistore/internal/app"
	"notistore/internal/config"
	"notistore/internal/http"
	"notistore/internal/http/controller"
	"notistore/internal/logging"
	"notistore/internal/metrics"
	"notistore/internal/queue/broker"
	"notistore/internal/retention"
	"notistore/internal/service/notify"
	"notistore/internal/sse"
	"notistore/internal/store"
)

func InitializeApp(cfg *config.Config) (*app.App, func(), error) {
	wire.Build(
		logging.New,
		store.NewStore,
		metrics.NewDefault,
		sse.NewHub,
		notify.NewService,
		broker.NewPublisher,
		broker.NewConsumer,
		retention.NewJanitor,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil, nil
}
