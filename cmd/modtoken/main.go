// Command modtoken mints a moderator bearer token for the admin API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/darktohka/confessions-bot/internal/config"
	"github.com/darktohka/confessions-bot/internal/services/modauth"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath     = flag.String("config", "configs/config.yaml", "path to the config file")
		moderatorID = flag.Int64("moderator", 0, "telegram id of the moderator")
		role        = flag.String("role", "moderator", "role claim for the token")
	)
	flag.Parse()

	if *moderatorID <= 0 {
		fmt.Fprintln(os.Stderr, "modtoken: -moderator is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "modtoken: load config: %v\n", err)
		os.Exit(1)
	}

	tokens := modauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	signed, expiresAt, err := tokens.Generate(*moderatorID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "modtoken: generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format("2006-01-02 15:04:05 UTC"))
}
