// Worker deletes expired sessions on a fixed interval until interrupted.
// Set DATABASE_URL and optionally SESSION_PURGE_INTERVAL (default 1h).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lighthouse-restaurant/backend/internal/config"
	"lighthouse-restaurant/backend/internal/db"
	sessionrepo "lighthouse-restaurant/backend/internal/session/repository"
)

const purgeTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.SessionStore == config.SessionStoreMemory {
		log.Println("worker: SESSION_STORE=memory; the server purges its own sessions, nothing to do")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	interval := cfg.PurgeInterval()
	log.Printf("worker: purging expired sessions every %s", interval)
	run(ctx, sessionrepo.NewPostgresRepository(conn), interval, time.Now)
	log.Println("worker: stopped")
}

// run purges once immediately and then on every tick until ctx is cancelled. Failures are logged
// and retried on the next tick.
func run(ctx context.Context, purger sessionrepo.Purger, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		purge(ctx, purger, now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purge(ctx context.Context, purger sessionrepo.Purger, at time.Time) {
	purgeCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()
	n, err := purger.DeleteExpired(purgeCtx, at)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("worker: purge sessions: %v", err)
		}
		return
	}
	if n > 0 {
		log.Printf("worker: purged %d expired sessions", n)
	}
}
