// Command accounts registers Persons with a password, checks passwords and
// revokes issued tokens.
//
//	accounts register -email jane@example.org -name "Jane Doe" < password
//	accounts check -email jane@example.org < password
//	accounts revoke < token
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vitae/internal/auth/revocation"
	"vitae/internal/auth/tokens"
	"vitae/internal/platform/config"
	"vitae/internal/platform/logger"
	"vitae/internal/platform/postgres"
	"vitae/internal/platform/redis"
	"vitae/internal/profile/identity"
	"vitae/internal/profile/store"
)

var errUsage = errors.New("usage: accounts register -email ADDRESS [-name NAME] | check -email ADDRESS | revoke")

type registerArgs struct {
	email string
	name  string
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdin); err != nil {
		log.Error("accounts failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger, args []string, stdin io.Reader) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "register":
		ra, err := parseRegister(args[1:])
		if err != nil {
			return err
		}
		password, err := readSecret(stdin)
		if err != nil {
			return err
		}
		return register(ctx, cfg, log, ra, password)
	case "check":
		ra, err := parseRegister(args[1:])
		if err != nil {
			return err
		}
		password, err := readSecret(stdin)
		if err != nil {
			return err
		}
		return check(ctx, cfg, log, ra.email, password)
	case "revoke":
		token, err := readSecret(stdin)
		if err != nil {
			return err
		}
		return revoke(ctx, cfg, log, token)
	default:
		return errUsage
	}
}

func parseRegister(args []string) (registerArgs, error) {
	var ra registerArgs
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&ra.email, "email", "", "email of the Person")
	fs.StringVar(&ra.name, "name", "", "display name for a new Person")
	if err := fs.Parse(args); err != nil {
		return registerArgs{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if strings.TrimSpace(ra.email) == "" {
		return registerArgs{}, errUsage
	}
	return ra, nil
}

// readSecret returns the first line of r without surrounding whitespace.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("nothing on stdin")
	}
	return line, nil
}

func identities(ctx context.Context, cfg config.Server, log *slog.Logger) (*identity.Service, func(), error) {
	db, err := postgres.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	svc := identity.New(store.NewPostgres(db, store.WithPostgresTxTimeout(cfg.TxTimeout)), identity.WithLogger(log))
	return svc, func() { _ = db.Close() }, nil
}

func register(ctx context.Context, cfg config.Server, log *slog.Logger, ra registerArgs, password string) error {
	svc, closeDB, err := identities(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := svc.Register(ctx, ra.email, ra.name, password)
	if err != nil {
		return err
	}
	log.Info("person registered", "person_id", p.ID, "email", p.Email)
	return nil
}

func check(ctx context.Context, cfg config.Server, log *slog.Logger, address, password string) error {
	svc, closeDB, err := identities(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := svc.Authenticate(ctx, address, password)
	if err != nil {
		return err
	}
	log.Info("password accepted", "person_id", p.ID)
	return nil
}

func revoke(ctx context.Context, cfg config.Server, log *slog.Logger, token string) error {
	client, err := redis.Open(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
		return tokens.New(cfg.JWTSigningKey, revocation.Shared(nil, client), tokens.WithLogger(log)).Revoke(ctx, token)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("revocations need REDIS_URL or DATABASE_URL: %w", err)
	}
	defer db.Close()
	return tokens.New(cfg.JWTSigningKey, revocation.Shared(db, nil), tokens.WithLogger(log)).Revoke(ctx, token)
}
