package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/config"
	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/monitor"
	"github.com/adarshmishra-tech/monitor-trading-infra/notify"
	"github.com/adarshmishra-tech/monitor-trading-infra/status"
	"github.com/adarshmishra-tech/monitor-trading-infra/system"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log := logger.WithComponent("main")

	notifiers := notify.Multi{notify.NewSMTPNotifier(notify.SMTPConfig{
		Server:   cfg.SMTP.Server,
		Port:     cfg.SMTP.Port,
		Sender:   cfg.SMTP.SenderEmail,
		Password: cfg.SMTP.AppPassword,
	})}
	if cfg.Kafka.Enabled() {
		k, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create kafka notifier")
		}
		notifiers = append(notifiers, k)
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("kafka alert sink enabled")
	}
	defer notifiers.Close()

	w, err := monitor.New(monitor.Settings{
		Interval:     cfg.Interval(),
		Thresholds:   cfg.Thresholds,
		Processes:    cfg.Processes,
		Recipients:   cfg.SupportEmails,
		DiskPath:     cfg.DiskPath,
		ReportTime:   cfg.ReportTime(),
		HistoryLimit: cfg.HistoryLimit,
	}, system.NewSource(system.DefaultCPUWindow), notifiers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create watchdog")
	}

	var srv *status.Server
	if cfg.MetricsAddr != "" {
		srv = status.New(cfg.MetricsAddr, w.History(), cfg.Thresholds)
		srv.Start()
	}

	log.Info().
		Time("next_report", w.NextReport()).
		Msg("trading infrastructure monitor started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// wait for termination signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Info().Msg("Shutting down monitoring system")
	fmt.Println("Shutting down...")
	cancel()

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l := logger.WithError(err)
			l.Error().Msg("status server shutdown error")
		}
		stop()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("loops did not stop in time, exiting")
	}
}
