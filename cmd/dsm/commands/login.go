package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		account  string
		password string
		otpCode  string
		session  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to DSM",
		Long: `Log in to DSM and print the session id.

The session id is not stored. Pass it to later commands with --sid or the
DSM_SID environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				return ErrAccountRequired
			}

			if password == "" {
				var err error

				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}

			client, err := createClient(cmd, false)
			if err != nil {
				return err
			}

			data, err := api.Authenticate(cmd.Context(), client, api.LoginOptions{
				Account:  account,
				Password: password,
				Session:  session,
				OTPCode:  otpCode,
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), data, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Session ID", data.SessionID)

				if data.DeviceID != "" {
					_ = table.Append("Device ID", data.DeviceID)
				}

				_ = table.Append("Export", "export DSM_SID="+data.SessionID)
			})
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&otpCode, "otp", "", "2-step verification code")
	cmd.Flags().StringVar(&session, "session", filestation.SessionName, "session name")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out of DSM",
		Long:  "End the session given with --sid or DSM_SID",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			if err := api.SignOut(cmd.Context(), client, session); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", filestation.SessionName, "session name")

	return cmd
}

// readPassword prompts on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if in, ok := cmd.InOrStdin().(*os.File); ok && in == os.Stdin && term.IsTerminal(int(syscall.Stdin)) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

		bytePassword, err := term.ReadPassword(int(syscall.Stdin))

		_, _ = fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		if len(bytePassword) == 0 {
			return "", ErrEmptyPassword
		}

		return string(bytePassword), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", ErrEmptyPassword
	}

	return password, nil
}
