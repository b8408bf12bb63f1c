package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/juva99/yoop-sub001/internal/repository"
	"github.com/juva99/yoop-sub001/internal/service"
	transport "github.com/juva99/yoop-sub001/internal/transport/http"
	"github.com/juva99/yoop-sub001/pkg/config"
	"github.com/juva99/yoop-sub001/pkg/db"
	"github.com/juva99/yoop-sub001/pkg/mq"
	"github.com/juva99/yoop-sub001/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("scheduling-service")
	defer func() { _ = shutdownTracer(context.Background()) }()

	gdb := db.Open(cfg.PGSchedulingDSN)
	games := repository.NewGameRepo(gdb)
	fields := repository.NewFieldRepo(gdb)
	rels := repository.NewRelationRepo(gdb)
	must(0, games.Migrate())
	must(0, fields.Migrate())
	must(0, rels.Migrate())

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.EventExchange))
	defer pub.Close()

	schedSvc := service.NewSchedulingSvc(games, fields, fields, pub, cfg.OpTimeout())
	relSvc := service.NewRelationSvc(rels, pub, cfg.OpTimeout())

	r := transport.NewRouter(schedSvc, relSvc)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		log.Println("[scheduling] http listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Println("[scheduling] stopped")
}
