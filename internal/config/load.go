// Package config initializes viper from file, environment and .env.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment
// variables. Every knob has a default, so a bare environment works.
func Load(cfgFile string) {
	// explicit .env loading; a missing file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MESHGOPHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	// Gopher client
	viper.SetDefault("gopher.timeout", 15*time.Second)
	viper.SetDefault("gopher.home", "gopher://gopher.floodgap.com/1/")

	// Paging
	viper.SetDefault("pager.menu_page_size", 10)
	viper.SetDefault("pager.file_page_size", 20)

	// Chunked delivery
	viper.SetDefault("chunker.chunk_bytes", 190)
	viper.SetDefault("chunker.delay", 1200*time.Millisecond)

	// Sessions
	viper.SetDefault("session.idle_ttl", 2*time.Hour)
	viper.SetDefault("session.sweep_interval", 5*time.Minute)
	viper.SetDefault("bridge.queue_size", 16)

	// Slack transport; enabled when a bot token is present
	viper.SetDefault("slack.enabled", os.Getenv("SLACK_BOT_TOKEN") != "")

	// Local demo gopher server
	viper.SetDefault("gopherd.enabled", false)
	viper.SetDefault("gopherd.addr", "127.0.0.1:7070")
	viper.SetDefault("gopherd.root", "./gopherroot")

	// Visit log
	viper.SetDefault("db.enabled", true)
	viper.SetDefault("db.type", "sqlite")
	viper.SetDefault("db.connection_string", ".meshgopher.db")

	// Metrics endpoint
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.addr", ":2112")
}
