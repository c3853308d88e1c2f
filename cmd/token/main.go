// Command token mints a bearer token for a user id and role, signed with the
// configured secret. Operators use it to bootstrap admin access.
package main

import (
	"fmt"
	"os"

	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	userID := pflag.StringP("user", "u", "", "user id to embed in the token")
	role := pflag.StringP("role", "r", string(auth.RoleUser), "role: user or admin")
	ttl := pflag.Duration("ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, lifetime).Issue(auth.Identity{
		UserID: *userID,
		Role:   auth.Role(*role),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
