package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"student-backend/internal/contract"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

// signupCmd registers a new teacher account
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a teacher account and sign in",
	RunE:  runSignup,
}

// loginCmd exchanges credentials for a saved token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved access token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in teacher",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "teacher email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "display name")
}

func runSignup(cmd *cobra.Command, _ []string) error {
	_, err := api.Signup(cmd.Context(), contract.SignupRequest{
		Email:    strings.TrimSpace(authEmail),
		Password: authPassword,
		Name:     strings.TrimSpace(authName),
	})
	if err != nil {
		return err
	}
	if err := persistSession(cfg.TokenFile, sess); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s\n", authEmail)
	return nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if _, err := api.Login(cmd.Context(), strings.TrimSpace(authEmail), authPassword); err != nil {
		return err
	}
	if err := persistSession(cfg.TokenFile, sess); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", authEmail)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	// Logout notifies the subscriber installed in setup, which removes the file.
	sess.Logout()
	if err := forgetSession(cfg.TokenFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	me, err := api.Me(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	color.New(color.FgCyan).Fprintln(out, me.Email)
	if me.Name != "" {
		fmt.Fprintf(out, "Name:    %s\n", me.Name)
	}
	fmt.Fprintf(out, "ID:      %s\n", me.ID)
	fmt.Fprintf(out, "Created: %s\n", me.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}
