package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	sourceDSN    string
	targetDSN    string
	sourceDriver string
	targetDriver string
	assumeYes    bool
)

var RootCmd = &cobra.Command{
	Use:   "db-sync",
	Short: "Schema reconciliation and data migration between databases",
	Long: `
  ____  ____    ____ __   __ _   _  ____ 
 |  _ \| __ )  / ___|\ \ / /| \ | |/ ___|
 | | | |  _ \  \___ \ \ V / |  \| | |    
 | |_| | |_) |  ___) | | |  | |\  | |___ 
 |____/|____/  |____/  |_|  |_| \_|\____|

DB SYNC 🔄 - Schema Healer & Data Migrator

Compares a live database against its canonical table models, adds what is
missing (tables and columns only, nothing is ever dropped), and moves rows
between engines with per-row fault tolerance.
`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-sync.yaml)")
	RootCmd.PersistentFlags().StringVar(&sourceDSN, "source-dsn", "", "source database DSN")
	RootCmd.PersistentFlags().StringVar(&targetDSN, "target-dsn", "", "target database DSN")
	RootCmd.PersistentFlags().StringVar(&sourceDriver, "source-driver", "", "source driver (mysql, postgres, sqlite3, sqlserver, oracle)")
	RootCmd.PersistentFlags().StringVar(&targetDriver, "target-driver", "", "target driver (mysql, postgres, sqlite3, sqlserver, oracle)")
	RootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")

	// Bind flags to viper (Flag > Config > Default)
	viper.BindPFlag("source.dsn", RootCmd.PersistentFlags().Lookup("source-dsn"))
	viper.BindPFlag("target.dsn", RootCmd.PersistentFlags().Lookup("target-dsn"))
	viper.BindPFlag("source.driver", RootCmd.PersistentFlags().Lookup("source-driver"))
	viper.BindPFlag("target.driver", RootCmd.PersistentFlags().Lookup("target-driver"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-sync")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
