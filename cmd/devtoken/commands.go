package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/casting-service/internal/auth"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devtoken",
		Short: "Local signing keys and tokens for the casting service",
		Long: `devtoken creates an RSA signing key, mints RS256 tokens for the casting roles
and prints the JWKS document that verifies them.

Point AUTH_PUBLIC_KEY_PEM_PATH at the key (and AUTH_PUBLIC_KEY_ID at its kid)
to run the service without an identity provider.`,
		SilenceUsage: true,
	}
	root.AddCommand(newKeygenCmd(), newMintCmd(), newJWKSCmd())
	return root
}

func newKeygenCmd() *cobra.Command {
	var out, pubOut string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.GenerateKey()
			if err != nil {
				return err
			}
			privPEM, err := auth.EncodePrivateKeyPEM(key)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, privPEM, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if pubOut != "" {
				pubPEM, err := auth.EncodePublicKeyPEM(&key.PublicKey)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pubOut, pubPEM, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", pubOut, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "devtoken.pem", "private key output path")
	cmd.Flags().StringVar(&pubOut, "pub-out", "", "optional public key output path")
	return cmd
}

func newMintCmd() *cobra.Command {
	var (
		keyPath  string
		roleName string
		subject  string
		issuer   string
		audience string
		kid      string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a token carrying a role's permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := auth.ParseRole(roleName)
			if err != nil {
				return err
			}
			key, err := auth.LoadPrivateKeyPEM(keyPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", keyPath, err)
			}
			if subject == "" {
				subject = "devtoken|" + string(role)
			}
			signer := auth.NewSigner(key, kid, issuer, audience, ttl)
			token, _, err := signer.GenerateToken(subject, role.Permissions())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "devtoken.pem", "private key path")
	cmd.Flags().StringVar(&roleName, "role", string(auth.RoleCastingAssistant), "casting-assistant, casting-director or executive-producer")
	cmd.Flags().StringVar(&subject, "sub", "", "subject claim")
	cmd.Flags().StringVar(&issuer, "issuer", os.Getenv("AUTH_ISSUER"), "issuer claim")
	cmd.Flags().StringVar(&audience, "audience", envOr("AUTH_AUDIENCE", "casting"), "audience claim")
	cmd.Flags().StringVar(&kid, "kid", envOr("AUTH_PUBLIC_KEY_ID", "dev"), "key id header")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func newJWKSCmd() *cobra.Command {
	var keyPath, kid string
	cmd := &cobra.Command{
		Use:   "jwks",
		Short: "Print the JWKS document for a key",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.LoadPrivateKeyPEM(keyPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", keyPath, err)
			}
			doc, err := auth.NewSigner(key, kid, "", "", 0).JWKS()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "devtoken.pem", "private key path")
	cmd.Flags().StringVar(&kid, "kid", envOr("AUTH_PUBLIC_KEY_ID", "dev"), "key id")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
