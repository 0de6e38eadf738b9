// @title omechoo Room Voting API
// @version 1.0
// @description Group voting rooms for deciding what or where to eat

// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
package main

import (
	_ "github.com/daehan00/omechoo/docs"

	"errors"
	"github.com/daehan00/omechoo/api"
	"github.com/daehan00/omechoo/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	if err := api.LoadDotEnv(".env"); err != nil {
		logging.Log.Warnf("Failed to load .env: %v", err)
	}
	api.InitViper()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logging.Log.Errorf("Failed to read config file: %v", err)
			panic("Failed to read config file: " + err.Error())
		}
		logging.Log.Info("No config file found, using environment only")
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
