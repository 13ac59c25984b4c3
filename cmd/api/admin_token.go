package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"iaction/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
)

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
}

func (i *jwtIssuer) Issue(subject string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": middleware.RoleAdmin,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func adminTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "admin-token [subject]",
		Short: "Mint a bearer token for the /admin endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("ADMIN_JWT_SECRET")
			if secret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}

			issuer := &jwtIssuer{secret: []byte(secret), ttl: ttl}
			token, exp, err := issuer.Issue(args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
