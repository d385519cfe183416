package main

import (
	"errors"
	"fmt"
	"time"

	"portal/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var tokenOpts struct {
	subject     string
	name        string
	role        string
	designation string
	ttl         time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Signs an access token with JWT_SECRET for local testing of the API and the
websocket feed. Refuses to run in release mode.`,
	RunE: runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenOpts.subject, "sub", "", "user id (required)")
	f.StringVar(&tokenOpts.name, "name", "", "display name")
	f.StringVar(&tokenOpts.role, "role", "employee", "admin, founder, employee, intern, freelancer or guest")
	f.StringVar(&tokenOpts.designation, "designation", "", "designation, e.g. Intern")
	f.DurationVar(&tokenOpts.ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.GinMode == "release" {
		return errors.New("development tokens are disabled in release mode")
	}
	middleware.SetJWTSecret(cfg.JWTSecret)

	now := time.Now()
	tok, err := middleware.SignToken(middleware.Claims{
		Name:        tokenOpts.name,
		Role:        tokenOpts.role,
		Designation: tokenOpts.designation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenOpts.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenOpts.ttl)),
		},
	}, middleware.GetJWTSecret())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
	return err
}
