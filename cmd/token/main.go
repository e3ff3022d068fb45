// Command token mints a bearer token accepted by the server, for local use.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ws-backend/auth"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret string `env:"JWT_SECRET,required=true"`
	JWTIssuer string `env:"JWT_ISSUER"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	userID := flag.String("user", "", "Subject to put in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	flag.Parse()
	if *userID == "" {
		return fmt.Errorf("-user is required")
	}

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	token, err := auth.NewVerifier(config.JWTSecret, config.JWTIssuer).GenerateToken(*userID, *ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}
