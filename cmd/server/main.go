package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	adminhandler "lighthouse-restaurant/backend/internal/admin/handler"
	"lighthouse-restaurant/backend/internal/audit"
	auditrepo "lighthouse-restaurant/backend/internal/audit/repository"
	authhandler "lighthouse-restaurant/backend/internal/auth/handler"
	authservice "lighthouse-restaurant/backend/internal/auth/service"
	"lighthouse-restaurant/backend/internal/config"
	contactrepo "lighthouse-restaurant/backend/internal/contact/repository"
	contentrepo "lighthouse-restaurant/backend/internal/content/repository"
	"lighthouse-restaurant/backend/internal/db"
	"lighthouse-restaurant/backend/internal/db/migrate"
	healthhandler "lighthouse-restaurant/backend/internal/health/handler"
	"lighthouse-restaurant/backend/internal/mail"
	"lighthouse-restaurant/backend/internal/media/storage"
	menurepo "lighthouse-restaurant/backend/internal/menu/repository"
	"lighthouse-restaurant/backend/internal/security"
	"lighthouse-restaurant/backend/internal/server"
	"lighthouse-restaurant/backend/internal/server/interceptors"
	sessionrepo "lighthouse-restaurant/backend/internal/session/repository"
	sessionservice "lighthouse-restaurant/backend/internal/session/service"
	sitehandler "lighthouse-restaurant/backend/internal/site/handler"
	"lighthouse-restaurant/backend/internal/telemetry/otel"
	userrepo "lighthouse-restaurant/backend/internal/user/repository"
)

const (
	serviceName     = "lighthouse-restaurant"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otel.NewProviders(ctx, otel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()
	if err := migrate.CheckVersion(cfg.DatabaseURL); err != nil {
		log.Fatalf("db: %v (run go run ./cmd/migrate)", err)
	}

	var media *storage.Store
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		log.Printf("storage: disabled: %v", err)
	} else {
		media = storage.NewStore(s3Client, cfg.StorageBucket, cfg.PublicStorageURL())
		if err := media.EnsureBucket(ctx); err != nil {
			log.Printf("storage: ensure bucket: %v", err)
		}
	}

	mailer := mail.NewSMTPSender(cfg)
	if !cfg.MailConfigured() {
		log.Println("mail: EMAIL_USER/EMAIL_PASSWORD not set; recovery and contact mail will fail")
	}

	users := userrepo.NewPostgresRepository(conn)
	categories := menurepo.NewCategoryStore(conn)
	products := menurepo.NewProductStore(conn)
	pages := contentrepo.NewPageStore(conn)
	settings := contentrepo.NewSettingsStore(conn)
	contacts := contactrepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)

	auditLogger := audit.NewLogger(auditLogs, otel.NewAuditEmitter(providers.LoggerProvider), interceptors.ClientIP)
	manager := authservice.NewManager(users, mailer, security.NewHasher(security.DefaultCost), cfg.AppURL)
	sessions := sessionservice.NewService(
		sessionStore(ctx, cfg, conn),
		security.NewCookieSigner(cfg.SessionSecret),
		cfg.SessionLifetime(),
	)

	siteDeps := sitehandler.Deps{
		Categories: categories,
		Products:   products,
		Pages:      pages,
		Settings:   settings,
		Messages:   contacts,
		Mailer:     mailer,
		Inbox:      cfg.ContactInbox,
	}
	adminDeps := adminhandler.Deps{
		Categories: categories,
		Products:   products,
		Pages:      pages,
		Settings:   settings,
		Contacts:   contacts,
		AuditLog:   auditLogs,
		Audit:      auditLogger,
	}
	var bucket healthhandler.StorageChecker
	if media != nil {
		siteDeps.Media = media
		adminDeps.Media = media
		bucket = media
	}

	site := sitehandler.NewHandler(siteDeps)
	router, err := server.NewRouter(server.Deps{
		Site: site,
		Auth: authhandler.NewHandler(manager, sessions, auditLogger, authhandler.CookieOptions{
			Name:   cfg.SessionCookieName,
			Secure: cfg.IsProduction(),
		}),
		Admin:         adminhandler.NewHandler(adminDeps),
		Health:        healthhandler.NewHandler(conn, bucket),
		NotFound:      site.NotFound,
		Sessions:      sessions,
		SessionCookie: cfg.SessionCookieName,
		ServiceName:   serviceName,
	})
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// sessionStore picks the session backend named by SESSION_STORE. Postgres sessions are purged by
// cmd/worker; memory sessions are purged here until ctx is done.
func sessionStore(ctx context.Context, cfg *config.Config, conn *sql.DB) sessionrepo.Store {
	if cfg.SessionStore != config.SessionStoreMemory {
		return sessionrepo.NewPostgresRepository(conn)
	}
	log.Println("session: using in-memory store; sessions are lost on restart")
	mem := sessionrepo.NewMemoryStore()
	go func() {
		ticker := time.NewTicker(cfg.PurgeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n, _ := mem.DeleteExpired(ctx, now); n > 0 {
					log.Printf("session: purged %d expired sessions", n)
				}
			}
		}
	}()
	return mem
}
