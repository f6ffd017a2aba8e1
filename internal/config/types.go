package config

import (
	"github.com/consensuslabs/extformatter/internal/formatter"
	"github.com/consensuslabs/extformatter/internal/logger"
	"github.com/consensuslabs/extformatter/internal/tempfile"
	"github.com/consensuslabs/extformatter/internal/watch"
)

// Config represents the application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Logging     logger.Config    `mapstructure:"logging"`
	Formatter   formatter.Config `mapstructure:"formatter"`
	TempFile    tempfile.Config  `mapstructure:"tempfile"`
	Watch       watch.Config     `mapstructure:"watch"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}
