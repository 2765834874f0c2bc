// Command studentctl is a terminal client for the student performance API.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"student-backend/internal/client"
	"student-backend/internal/session"
)

var (
	configPath string

	cfg  cliConfig
	sess *session.Session
	api  *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "studentctl",
	Short: "Predict student performance from the terminal",
	Long: `studentctl signs a teacher in, edits student records as YAML drafts and
submits them to the prediction API.

Configuration is read from defaults, then the YAML file named by --config or
STUDENTCTL_CONFIG, then STUDENTCTL_* environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(predictCmd, historyCmd, photoCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	sess = session.New()
	if err := restoreSession(cfg.TokenFile, sess); err != nil {
		return err
	}
	// a 401 from the API drops the saved token as well
	sess.Subscribe(func() {
		_ = forgetSession(cfg.TokenFile)
	})
	api = client.New(cfg.APIURL, sess, client.WithTimeout(cfg.Timeout))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", client.UserMessage(err))
		os.Exit(1)
	}
}
