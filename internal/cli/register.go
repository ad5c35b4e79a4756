package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcallaghan/sessionlink/internal/dependencies/clock"
	"github.com/jcallaghan/sessionlink/internal/gateway"
)

func newRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			gw := gateway.New(gateway.Config{BaseURL: cfg.ServerURL}, clock.New(), logger)

			caps, err := gw.FetchCapabilities(cmd.Context())
			if err != nil {
				return err
			}
			if !caps.RegistrationEnabled {
				return fmt.Errorf("the server does not allow self-registration")
			}

			if err := gw.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}

			out.PrintMessage("Account created, you can now log in")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newServerInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server-info",
		Short: "Show the server's login capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			gw := gateway.New(gateway.Config{BaseURL: cfg.ServerURL}, clock.New(), logger)

			caps, err := gw.FetchCapabilities(cmd.Context())
			if err != nil {
				return err
			}

			out.Print(caps)
			return nil
		},
	}
}
