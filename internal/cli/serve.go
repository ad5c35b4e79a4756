package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jcallaghan/sessionlink/internal/dependencies/clock"
	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/stubserver"
)

func newServeCmd() *cobra.Command {
	var (
		port           int
		openIDProvider string
		forceOpenID    bool
		noRegistration bool
		announcement   string
		seedName       string
		seedEmail      string
		seedPassword   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development backend",
		Long: `Run an in-memory backend implementing the session endpoints, for
trying the login flows locally. State is lost on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			signingKey := make([]byte, 32)
			if _, err := rand.Read(signingKey); err != nil {
				return fmt.Errorf("failed to generate signing key: %w", err)
			}

			accounts := stubserver.NewAccounts(clock.New(), signingKey)
			if seedEmail != "" {
				if _, err := accounts.Create(cmd.Context(), seedName, seedEmail, seedPassword); err != nil {
					return fmt.Errorf("failed to seed account: %w", err)
				}
				logger.Info("seeded account", slog.String("email", seedEmail))
			}

			caps := model.Capabilities{
				RegistrationEnabled: !noRegistration,
				EmailLoginEnabled:   true,
				OpenIDEnabled:       openIDProvider != "",
				OpenIDForced:        forceOpenID,
				Announcement:        announcement,
			}

			handlers := stubserver.NewHandlers(accounts, caps, openIDProvider, logger)
			router := stubserver.Router(handlers, logger)

			serverCfg := stubserver.DefaultServerConfig()
			serverCfg.Port = port
			server := stubserver.NewServer(router, serverCfg, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			logger.Info("backend started", slog.String("addr", server.Addr()))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return server.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Listen port")
	cmd.Flags().StringVar(&openIDProvider, "openid-provider", "", "Identity-provider URL for OpenID logins")
	cmd.Flags().BoolVar(&forceOpenID, "force-openid", false, "Force all logins through OpenID")
	cmd.Flags().BoolVar(&noRegistration, "no-registration", false, "Disable self-registration")
	cmd.Flags().StringVar(&announcement, "announcement", "", "Announcement shown to users")
	cmd.Flags().StringVar(&seedName, "seed-name", "Admin", "Name for the seeded account")
	cmd.Flags().StringVar(&seedEmail, "seed-email", "", "Email for a seeded account")
	cmd.Flags().StringVar(&seedPassword, "seed-password", "", "Password for the seeded account")

	return cmd
}
