package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Path string
	}
	Server struct {
		Port int
	}
	Auth struct {
		Username     string
		PasswordHash string
		JWTSecret    string
	}
	Reminder struct {
		DefaultLeadHours int
	}
	Notify struct {
		Slack struct {
			Token   string
			Channel string
		}
		Email struct {
			SMTPHost    string
			SMTPPort    int
			From        string
			Password    string
			ToReceivers []string
		}
	}
}

// LoadConfig loads the configuration from config.yaml, writing a default
// file on first run.
func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	var config Config

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			config.Database.Path = "data/motodiag.db"
			config.Server.Port = 8080
			config.Reminder.DefaultLeadHours = 2

			viper.Set("database.path", config.Database.Path)
			viper.Set("server.port", config.Server.Port)
			viper.Set("reminder.defaultleadhours", config.Reminder.DefaultLeadHours)

			if err := os.MkdirAll("data", 0755); err != nil {
				fmt.Printf("Warning: Failed to create data directory: %v\n", err)
			}

			if err := viper.SafeWriteConfig(); err != nil {
				fmt.Printf("Warning: Failed to write default config: %v\n", err)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
		}
	} else {
		if err := viper.Unmarshal(&config); err != nil {
			fmt.Printf("Error unmarshaling config: %v\n", err)
		}
	}

	if config.Reminder.DefaultLeadHours <= 0 {
		config.Reminder.DefaultLeadHours = 2
	}

	return &config
}
