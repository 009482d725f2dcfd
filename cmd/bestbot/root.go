package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const name = "bestbot"

// app holds what every subcommand needs once the configuration is loaded
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	log    bestbot.SLogger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.NewViperWithDefaults()}

	var cfgFile string
	var envFile string

	rootCmd := &cobra.Command{
		Use:           name,
		Short:         "A slack bot compiling message stats",
		Long:          "bestbot listens to slack and compiles per-author message stats over every channel it can read.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			return a.load(cfgFile, envFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file to load (default is ./.env)")
	rootCmd.PersistentFlags().Bool(config.DebugKey, false, "enable debug logging")
	rootCmd.PersistentFlags().String(config.TokenKey, "", "slack bot token (or "+config.EnvPrefix+"_TOKEN)")

	cobra.CheckErr(a.v.BindPFlag(config.DebugKey, rootCmd.PersistentFlags().Lookup(config.DebugKey)))
	cobra.CheckErr(a.v.BindPFlag(config.TokenKey, rootCmd.PersistentFlags().Lookup(config.TokenKey)))

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newReportCommand(a))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Overrides the root's hook, printing the version doesn't need a valid configuration
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, bestbot.VERSION)
		},
	})

	return rootCmd
}

// load reads the .env file and the configuration file, validates the configuration and sets up logging
func (a *app) load(cfgFile string, envFile string) (err error) {
	envFiles := []string{}
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	if err = config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	if err = config.ReadConfigFile(a.v, cfgFile); err != nil {
		return err
	}

	if err = config.Validate(a.v); err != nil {
		return err
	}

	debug := a.v.GetBool(config.DebugKey)
	if a.logger, err = bestbot.NewZapLogger(debug); err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	a.log = bestbot.NewSLogger(a.logger.Sugar(), debug)

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
