package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/config"
	"github.com/imyashkale/shutdownmanager/internal/events"
	"github.com/imyashkale/shutdownmanager/internal/handlers"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/metrics"
	"github.com/imyashkale/shutdownmanager/internal/queue"
	"github.com/imyashkale/shutdownmanager/internal/router"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/imyashkale/shutdownmanager/internal/store"
	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
}

// newPublisher picks NATS when configured, the structured log otherwise
func newPublisher(c *config.Config) (events.Publisher, error) {
	if !c.UsesNATS() {
		logger.Info("NATS_URL not set, mutation events go to the log")
		return events.NewLogPublisher(c.NATSSubjectPrefix), nil
	}
	p, err := events.NewNATSPublisher(c.NATSURL, c.NATSSubjectPrefix)
	if err != nil {
		return nil, err
	}
	logger.WithField("url", c.NATSURL).Info("Publishing mutation events to NATS")
	return p, nil
}

func runServer(c *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, err := newPublisher(c)
	if err != nil {
		return err
	}
	defer publisher.Close()

	eventQueue := queue.NewEventQueue(c.EventQueueSize)
	workerPool := queue.NewWorkerPool(eventQueue, c.EventWorkers)
	workerPool.Start(events.Handler(context.Background(), publisher))
	logger.WithFields(map[string]interface{}{
		"queue_size": c.EventQueueSize,
		"workers":    c.EventWorkers,
	}).Info("Event workers started")

	s, closeBackend, err := openStore(ctx, c, store.WithNotifier(eventQueue))
	if err != nil {
		workerPool.Stop()
		return err
	}
	defer closeBackend()

	fleet := services.NewFleetService(s)
	m := metrics.New(fleet)
	importer := services.NewImportService(s, m)

	if !strings.EqualFold(c.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(router.Handlers{
		Health:       handlers.NewHealthHandler(s, c.StoreBackend),
		Applications: handlers.NewApplicationHandler(s, fleet, importer, c.MaxUploadBytes),
		Servers:      handlers.NewServerHandler(s, fleet, importer, c.MaxUploadBytes),
		Stats:        handlers.NewStatsHandler(fleet),
		Metrics:      m.Handler(),
	}, c.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on :%s", c.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		workerPool.Stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithField("error", err.Error()).Error("Server shutdown failed")
	}

	// Stop accepting events and wait for workers to drain the queue
	workerPool.Stop()
	logger.Info("All workers stopped")
	return nil
}
