package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-custody/api/jsonrpc"
	"github.com/axiomesh/axiom-custody/internal/executor"
	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/repo"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

func start(ctx *cli.Context) error {
	r, err := loadRepo(ctx)
	if err != nil || r == nil {
		return err
	}

	appCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()
	if err := loggers.Initialize(appCtx, r, true); err != nil {
		return err
	}

	log := loggers.Logger(loggers.App)
	printVersion(func(c string) {
		log.Info(c)
	})
	r.PrintNodeInfo(func(c string) {
		log.Info(c)
	})

	if err := repo.WritePid(r.RepoRoot); err != nil {
		return fmt.Errorf("write pid error: %s", err)
	}

	exec, err := executor.NewWithRepo(r)
	if err != nil {
		return fmt.Errorf("init executor failed: %w", err)
	}
	defer exec.Close()

	cbs, err := jsonrpc.NewChainBrokerService(exec, loggers.Logger(loggers.API))
	if err != nil {
		return fmt.Errorf("init json-rpc service failed: %w", err)
	}
	cbs.Start(r.Config.JsonRPC.Listen)
	defer func() {
		if err := cbs.Stop(); err != nil {
			log.WithField("err", err).Error("Stop json-rpc service failed")
		}
	}()

	var monitor *http.Server
	if r.Config.Monitor.Enable {
		monitor = startMonitor(r.Config.Monitor.Listen, log)
	}

	logsCh := make(chan []*types.EvmLog, 64)
	sub := exec.SubscribeLogsEvent(logsCh)
	defer sub.Unsubscribe()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	log.WithField("height", exec.CurrentHeight()).Info("Custody started")
	for {
		select {
		case logs := <-logsCh:
			for _, l := range logs {
				log.WithFields(logrus.Fields{
					"height":  l.BlockNumber,
					"address": l.Address,
					"tx":      l.TransactionHash,
				}).Debug("Account event")
			}
		case err := <-sub.Err():
			return err
		case <-stop:
			fmt.Println("received interrupt signal, shutting down...")
			if monitor != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := monitor.Shutdown(shutdownCtx); err != nil {
					log.WithField("err", err).Error("Stop monitor failed")
				}
				shutdownCancel()
			}
			if err := repo.RemovePID(r.RepoRoot); err != nil {
				log.WithField("err", err).Error("Remove pid failed")
				return fmt.Errorf("remove pid file error: %s", err)
			}
			return nil
		}
	}
}

func startMonitor(listen string, log logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("err", err).Error("Monitor stopped")
		}
	}()
	log.WithField("listen", listen).Info("Monitor started")
	return server
}
