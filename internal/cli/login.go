package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcallaghan/sessionlink/internal/bridge"
	"github.com/jcallaghan/sessionlink/internal/credentials"
	"github.com/jcallaghan/sessionlink/internal/dependencies/clock"
	"github.com/jcallaghan/sessionlink/internal/gateway"
	"github.com/jcallaghan/sessionlink/internal/login"
	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/session"
)

// relayWait bounds how long the login command waits for the
// long-lived-token relay before giving up on reporting it
const relayWait = 3 * time.Second

// terminalNavigator prints navigation instead of performing it; a
// terminal cannot follow an identity-provider redirect itself
type terminalNavigator struct {
	out *Output
}

func (n *terminalNavigator) Redirect(url string) {
	n.out.PrintMessage("Open in your browser: " + url)
}

func (n *terminalNavigator) EnterApp() {}

// terminalReporter surfaces out-of-band failures on stderr
type terminalReporter struct {
	out *Output
}

func (r *terminalReporter) ReportError(err error) {
	r.out.PrintError(err)
}

func newLoginCmd() *cobra.Command {
	var email, password, token string
	var openID, native bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Establish an authenticated session",
		Long: `Log in with a password, a pre-issued token, or via OpenID.

The email defaults to the one remembered from the previous login.
With --native, a successful password login also relays a long-lived
token to the native host channel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			ctx := cmd.Context()

			store, closeStore, err := cfg.OpenStore()
			if err != nil {
				return fmt.Errorf("failed to open credential store: %w", err)
			}
			defer func() { _ = closeStore() }()

			creds := credentials.New(store, logger)
			sessions := session.New()
			gw := gateway.New(gateway.Config{BaseURL: cfg.ServerURL}, clock.New(), logger)

			caps, err := gw.FetchCapabilities(ctx)
			if err != nil {
				return err
			}
			if caps.Announcement != "" {
				out.PrintMessage(caps.Announcement)
			}

			relayed := make(chan string, 1)
			var host bridge.HostFunc
			if native {
				host = func(message string) {
					logger.Debug("outbound native message", slog.String("message", message))
					if payload, ok := strings.CutPrefix(message, bridge.KindLogin+"|"); ok {
						select {
						case relayed <- payload:
						default:
						}
					}
				}
			}
			br := bridge.New(host, logger)
			defer br.Close()

			o := login.New(login.Options{
				Gateway:      gw,
				Credentials:  creds,
				Bridge:       br,
				Sessions:     sessions,
				Tokens:       store,
				Capabilities: caps,
				Navigator:    &terminalNavigator{out: out},
				Reporter:     &terminalReporter{out: out},
				Logger:       logger,
			})
			defer o.Close()

			o.Start(ctx)
			if o.State() == login.StateForcedRedirect {
				// The provider URL has been printed; nothing more to do here
				return nil
			}

			switch {
			case token != "":
				if err := o.SubmitToken(ctx, token); err != nil {
					return err
				}
			case openID:
				o.LoginWithOpenID()
				return nil
			default:
				if email != "" {
					creds.SetEmail(ctx, email)
				}
				if password == "" {
					return fmt.Errorf("--password is required")
				}
				creds.SetPassword(password)

				if err := o.SubmitPassword(ctx); err != nil {
					if errors.Is(err, model.ErrEmptyCredentials) {
						return fmt.Errorf("--email is required (no remembered email found)")
					}
					return err
				}
				if o.Failed() {
					return fmt.Errorf("login failed: invalid email or password")
				}
			}

			out.Print(sessions.User())

			if native && token == "" {
				select {
				case <-relayed:
					out.PrintMessage("Relayed long-lived token to native host")
				case <-time.After(relayWait):
					out.PrintMessage("No long-lived token was issued")
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (defaults to the remembered one)")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&token, "token", "", "Pre-issued access token")
	cmd.Flags().BoolVar(&openID, "openid", false, "Log in via the OpenID provider")
	cmd.Flags().BoolVar(&native, "native", false, "Act as a native host and receive the token relay")

	return cmd
}
