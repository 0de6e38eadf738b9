package api

import (
	"github.com/daehan00/omechoo/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"os"
	"strings"
	"sync"
	"time"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
}

type StorageConfig struct {
	Driver                string
	DSN                   string
	Region                string
	Endpoint              string
	TableNameRooms        string
	TableNameParticipants string
	TableNameVotes        string
}

type ServerConfig struct {
	Port            int
	BaseURL         string
	GinMode         string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

var settingsOnce sync.Once

// LoadDotEnv loads a .env file when present. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// InitViper wires config.yaml and the environment. STORAGE_DRIVER overrides storage.driver.
func InitViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func ReadConfig() *Config {
	var conf = &Config{
		StorageConfig: StorageConfig{
			Driver:                getStringOrDefault("storage.driver", "dynamodb"),
			DSN:                   getStringOrDefault("storage.dsn", "omechoo.db"),
			Region:                getStringOrDefault("storage.region", "ap-northeast-2"),
			Endpoint:              getStringOrDefault("storage.endpoint", ""),
			TableNameRooms:        getStringOrDefault("storage.TableNameRooms", "Rooms"),
			TableNameParticipants: getStringOrDefault("storage.TableNameParticipants", "Participants"),
			TableNameVotes:        getStringOrDefault("storage.TableNameVotes", "Votes"),
		},
		ServerConfig: ServerConfig{
			Port:            getIntOrDefault("server.port", 8080),
			BaseURL:         getStringOrDefault("server.baseURL", "http://localhost:5173"),
			GinMode:         getStringOrDefault("server.ginMode", "debug"),
			CORSOrigins:     getStringSliceOrDefault("server.corsOrigins", []string{"*"}),
			ShutdownTimeout: time.Duration(getIntOrDefault("server.shutdownTimeoutSeconds", 10)) * time.Second,
		},
		AuthConfig: AuthConfig{
			JWTSecret: getString("auth.jwtSecret"),
			TokenTTL:  time.Duration(getIntOrDefault("auth.tokenTTLHours", 24)) * time.Hour,
		},
	}

	logging.SetLevel(getStringOrDefault("logging.level", "info"))

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

// Environment values arrive as one comma separated string.
func getStringSliceOrDefault(name string, def []string) []string {
	if viper.IsSet(name) {
		var out []string
		for _, v := range viper.GetStringSlice(name) {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		logging.Log.Printf("found '%s' in viper", name)
		return out
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
