package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a local account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in; later commands act on this user's records",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runRegister(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	password, err := readSecret(out, "Password: ")
	if err != nil {
		return err
	}
	confirmation, err := readSecret(out, "Confirm password: ")
	if err != nil {
		return err
	}

	if err := app.accounts.Register(cmd.Context(), args[0], password, confirmation); err != nil {
		return err
	}
	fmt.Fprintln(out, "Registration complete. Log in with: stt login", args[0])
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	password, err := readSecret(out, "Password: ")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if prev, err := app.accounts.Current(ctx); err == nil && prev.Username != args[0] {
		fmt.Fprintf(out, "Switching from %s.\n", prev.Username)
	}

	sess, err := app.accounts.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as %s.\n", sess.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := app.accounts.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess, err := app.session(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (since %s)\n", sess.Username, sess.LoginTime.Local().Format("2006-01-02 15:04"))
	return nil
}
