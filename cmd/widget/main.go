// Package main is the terminal client for the assistant server. It drives the
// same conversation state machine as the web widget.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/internal/config"
	"github.com/dengun/assistant/server/internal/i18n"
)

var (
	serverURL string
	langFlag  string
	themeFlag string
	verbose   bool

	cfg    *config.Widget
	prefs  *preferences
	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "widget",
		Short: "Terminal client for the Dengun assistant",
		Long: `Talk to the assistant from a terminal.

Start a conversation:  widget chat
Open a video avatar:   widget avatar`,
		PersistentPreRunE: setup,
		SilenceUsage:      true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "assistant server URL (default $ASSISTANT_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "interface language: en, es, pt, fr or de")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "", "light or dark")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(avatarCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadWidget()
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if langFlag != "" {
		cfg.Language = langFlag
	}
	if themeFlag != "" {
		cfg.Theme = themeFlag
	}

	path := cfg.Preferences
	if path == "" {
		path = defaultPreferencesPath()
	}
	prefs, err = loadPreferences(path)
	if err != nil {
		return err
	}

	logger, err = newLogger(verbose)
	return err
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// initialLanguage picks the explicit choice, then the saved preference, then
// the system locale, then English
func initialLanguage(explicit, saved, locale string) i18n.Language {
	for _, candidate := range []string{explicit, saved, locale} {
		if lang, ok := i18n.Parse(candidate); ok {
			return lang
		}
	}
	return i18n.DefaultLanguage
}
