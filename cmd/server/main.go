package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"capgrid/config"
	"capgrid/internal/appcore"
	"capgrid/internal/queue"
	"capgrid/internal/server"
	"capgrid/internal/service"
	"capgrid/internal/storage"
	"capgrid/internal/taskrunner"
	"capgrid/log"

	"go.uber.org/zap"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid config", zap.Error(err))
		return
	}

	storage.InitDB()

	svc := service.NewService()
	runner := newRunner(svc)
	defer runner.Close()
	svc.Runner = runner

	// Jobs left processing by a previous run can never finish.
	svc.RecoverStaleJobs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = server.StartBackend(ctx, svc); err != nil {
		log.GetLogger().Error("backend failed", zap.Error(err))
		os.Exit(1)
	}
}

type closableRunner interface {
	appcore.Runner
	Close()
}

type queueRunner struct {
	*queue.Queue
}

func (q queueRunner) Close() {
	if err := q.Queue.Close(); err != nil {
		log.GetLogger().Warn("close queue failed", zap.Error(err))
	}
}

func newRunner(svc *service.Service) closableRunner {
	if !config.Conf.Queue.Enabled {
		return taskrunner.New(svc.RunJob, taskrunner.Config{
			QueueSize:   config.Conf.Runner.QueueSize,
			Concurrency: config.Conf.Runner.Concurrency,
		})
	}

	q := queue.NewQueue(queue.QueueConfig{
		RedisAddr:     config.Conf.Queue.RedisAddr,
		RedisPassword: config.Conf.Queue.RedisPassword,
		RedisDB:       config.Conf.Queue.RedisDB,
		Concurrency:   config.Conf.Queue.Concurrency,
	})
	go func() {
		if err := queue.StartWorker(q, svc.RunJob); err != nil {
			log.GetLogger().Error("queue worker stopped", zap.Error(err))
		}
	}()
	return queueRunner{Queue: q}
}
