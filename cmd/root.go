// Package cmd wires the dashsync command tree.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/endorses/dashsync/cmd/attack"
	"github.com/endorses/dashsync/cmd/login"
	"github.com/endorses/dashsync/cmd/logs"
	"github.com/endorses/dashsync/cmd/tasks"
	"github.com/endorses/dashsync/cmd/users"
	versioncmd "github.com/endorses/dashsync/cmd/version"
	"github.com/endorses/dashsync/cmd/watch"
	"github.com/endorses/dashsync/internal/pkg/cmdutil"
	"github.com/endorses/dashsync/internal/pkg/logger"
	"github.com/endorses/dashsync/internal/pkg/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "dashsync",
	Short:   "dashsync keeps an operations dashboard in sync",
	Long:    fmt.Sprintf("dashsync %s - live log table, task calendar and admin controls for the operations dashboard", version.GetShortVersion()),
	Version: version.GetFullVersion(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(viper.GetString(cmdutil.KeyLogLevel))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(cmdutil.ExitGeneralError)
	}
}

func addSubCommandPalettes() {
	rootCmd.AddCommand(watch.WatchCmd)
	rootCmd.AddCommand(logs.LogsCmd)
	rootCmd.AddCommand(tasks.TasksCmd)
	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(attack.AttackCmd)
	rootCmd.AddCommand(login.LoginCmd)
	rootCmd.AddCommand(versioncmd.VersionCmd)
}

func init() {
	cobra.OnInitialize(initConfig)

	logger.Initialize()

	addSubCommandPalettes()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dashsync/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag(cmdutil.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	cmdutil.AddConnectionFlags(rootCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// ~/.config/dashsync/config.yaml, then ~/.dashsync.yaml
		viper.AddConfigPath(home + "/.config/dashsync")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".dashsync")
		}
	}

	viper.SetEnvPrefix("DASHSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cmdutil.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
