// Command admin provisions ADMIN accounts directly against the configured
// store. Sign-up over HTTP only ever creates USER accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/core/config"
	"user-account-service/internal/core/logger"
	"user-account-service/internal/domain"
	"user-account-service/internal/repo"
	"user-account-service/internal/service"
	"user-account-service/pkg/utils"
)

type options struct {
	configPath string
	email      string
	password   string
	name       string
	birthday   string
	promote    string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the yaml config")
	fs.StringVar(&o.email, "email", "", "email of the admin to create")
	fs.StringVar(&o.password, "password", "", "password of the admin to create")
	fs.StringVar(&o.name, "name", "Administrator", "display name")
	fs.StringVar(&o.birthday, "birthday", "", "birthday, "+domain.BirthdayLayout+" (required with --email)")
	fs.StringVar(&o.promote, "promote", "", "promote an existing account (by email) to ADMIN")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	switch {
	case o.promote != "" && o.email != "":
		return o, errors.New("--promote and --email are mutually exclusive")
	case o.promote == "" && (o.email == "" || o.password == "" || o.birthday == ""):
		return o, errors.New("either --promote or all of --email, --password and --birthday are required")
	}
	return o, nil
}

func main() {
	_ = godotenv.Load()
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	if err := run(o, cfg, log); err != nil {
		log.Error("admin command failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(o options, cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeStore, err := repo.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer closeStore()

	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.TokenTTL()}
	svc := service.NewUserService(users, utils.NewHasher(), jwter, log)

	var p *domain.Profile
	if o.promote != "" {
		p, err = svc.Promote(ctx, o.promote)
	} else {
		in := service.RegisterInput{Email: o.email, Password: o.password, Name: o.name}
		if in.Birthday, err = time.Parse(domain.BirthdayLayout, o.birthday); err != nil {
			return fmt.Errorf("birthday: %w", err)
		}
		p, err = svc.CreateAdmin(ctx, in)
	}
	if err != nil {
		return err
	}
	log.Info("admin ready", zap.String("id", p.ID), zap.String("email", p.Email), zap.String("role", string(p.Role)))
	return nil
}
