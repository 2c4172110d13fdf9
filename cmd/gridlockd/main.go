package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/gridlock-gg/gridlock/room"
	"github.com/gridlock-gg/gridlock/store"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	viper.SetDefault("addr", ":8080")
	viper.SetDefault("db", "gridlock.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("sentry_dsn", "")
	viper.SetEnvPrefix("gridlock")
	viper.AutomaticEnv()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	if lvl, err := logrus.ParseLevel(viper.GetString("log_level")); err == nil {
		log.Level = lvl
	}

	if dsn := viper.GetString("sentry_dsn"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Warnf("sentry disabled: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	maps, err := store.Open(viper.GetString("db"), log)
	if err != nil {
		log.Fatalf("open map store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rooms := newRoomSet(ctx, log)

	r := chi.NewRouter()
	r.Mount("/api", maps.Handler())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/rooms/{id}/ws", rooms.serve)

	addr := viper.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		log.Infof("gridlockd listening on %v", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// roomSet creates rooms on first join and runs one relay loop per room for
// the lifetime of the process.
type roomSet struct {
	ctx context.Context
	log *logrus.Logger

	mu     sync.Mutex
	relays map[string]*room.Relay
}

func newRoomSet(ctx context.Context, log *logrus.Logger) *roomSet {
	return &roomSet{ctx: ctx, log: log, relays: make(map[string]*room.Relay)}
}

func (s *roomSet) serve(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if id == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	relay, ok := s.relays[id]
	if !ok {
		relay = room.NewRelay(room.New(id, s.log), s.log)
		s.relays[id] = relay
		go relay.Run(s.ctx)
		s.log.Infof("room %v created", id)
	}
	s.mu.Unlock()

	relay.ServeHTTP(w, req)
}
