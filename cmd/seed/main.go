// seed provisions a back office administrator. Idempotent: an existing account with the same email
// (case-insensitive) gets its name, password and admin flag updated.
//
//	go run ./cmd/seed -email admin@example.com [-name Administrador] [-password ...]
//
// The password comes from -password, then ADMIN_PASSWORD, then a no-echo terminal prompt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"lighthouse-restaurant/backend/internal/auth/service"
	"lighthouse-restaurant/backend/internal/config"
	"lighthouse-restaurant/backend/internal/db"
	"lighthouse-restaurant/backend/internal/security"
	"lighthouse-restaurant/backend/internal/user/domain"
	userrepo "lighthouse-restaurant/backend/internal/user/repository"
)

const defaultAdminName = "Administrador"

// adminStore is the subset of the user repository needed to provision an admin.
type adminStore interface {
	FindByEmailFold(ctx context.Context, email string) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
}

func main() {
	email := flag.String("email", "", "Admin email (required)")
	name := flag.String("name", defaultAdminName, "Display name")
	password := flag.String("password", "", "Admin password; falls back to ADMIN_PASSWORD or a prompt")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "seed: -email is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pw, err := readPassword(*password)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	created, err := ensureAdmin(ctx, userrepo.NewPostgresRepository(conn), security.NewHasher(security.DefaultCost),
		*email, *name, pw, time.Now().UTC(), uuid.NewString)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if created {
		log.Printf("seed: created admin %s", strings.TrimSpace(*email))
	} else {
		log.Printf("seed: updated admin %s", strings.TrimSpace(*email))
	}
}

func readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password given and stdin is not a terminal; use -password or ADMIN_PASSWORD")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ensureAdmin creates the admin or updates the oldest account matching email. It reports whether a new
// account was created.
func ensureAdmin(ctx context.Context, users adminStore, hasher *security.Hasher, email, name, password string, now time.Time, newID func() string) (bool, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultAdminName
	}
	if err := service.CheckPasswordLength(password); err != nil {
		return false, err
	}
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.FindByEmailFold(ctx, email)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		u := existing[0]
		u.Name = name
		u.PasswordHash = hash
		u.IsAdmin = true
		u.UpdatedAt = now
		return false, users.Update(ctx, u)
	}

	u := &domain.User{
		ID:           newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return false, err
	}
	return true, users.Create(ctx, u)
}
