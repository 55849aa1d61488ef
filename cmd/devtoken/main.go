// Command devtoken mints a member access token for local development, signed
// with the same configuration the server loads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"lovegift/config"
	"lovegift/internal/auth"
	"lovegift/internal/database"
	"lovegift/internal/repository"
)

func main() {
	memberID := flag.Uint("member", 0, "member id to issue the token for")
	flag.Parse()
	if *memberID == 0 {
		fmt.Fprintln(os.Stderr, "usage: devtoken -member <id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config", err)
	}
	if cfg.Server.Env == "production" {
		fatal("refusing to mint tokens", fmt.Errorf("APP_ENV is production"))
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		fatal("database", err)
	}
	member, err := repository.NewMemberRepository(db).GetByID(context.Background(), uint(*memberID))
	if err != nil {
		fatal("load member", err)
	}
	tok, err := auth.GenerateAccessToken(&cfg.JWT, member.ID, member.Email)
	if err != nil {
		fatal("sign token", err)
	}
	fmt.Println(tok)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
