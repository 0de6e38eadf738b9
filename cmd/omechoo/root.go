package main

import (
	"context"
	"fmt"
	"github.com/daehan00/omechoo/api"
	"github.com/daehan00/omechoo/client"
	"github.com/daehan00/omechoo/locate"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/session"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"math/rand"
	"os"
	"strings"
)

// app carries what every command needs. Fields already set are kept, so tests can inject them.
type app struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	api      *client.Client
	tokens   session.Store
	identity *session.IdentityView
	places   locate.PlaceSearcher
	geo      locate.Geolocator
	pick     func(n int) int
}

type cliConfig struct {
	APIURL         string
	SessionBackend string
	SessionPath    string
	RedisAddr      string
	KakaoRESTKey   string
	LogLevel       string
}

func newRootCmd(a *app) *cobra.Command {
	if err := api.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "! failed to load .env: %s\n", err)
	}
	v := viper.New()

	root := &cobra.Command{
		Use:           "omechoo",
		Short:         "Decide what to eat, alone or as a group",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, readCLIConfig(v))
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8000", "omechoo server root")
	flags.String("session-backend", "file", "where room tokens live: memory, file or redis")
	flags.String("session-path", "", "token file for the file backend")
	flags.String("redis-addr", "localhost:6379", "redis address for the redis backend")
	flags.String("kakao-key", "", "Kakao REST key for place search")
	flags.String("log-level", "warn", "log level")

	for key, flag := range map[string]string{
		"api.url":           "api-url",
		"session.backend":   "session-backend",
		"session.path":      "session-path",
		"session.redisAddr": "redis-addr",
		"kakao.restKey":     "kakao-key",
		"logging.level":     "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	v.SetEnvPrefix("OMECHOO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newMenusCmd(a),
		newRecommendCmd(a),
		newGachaCmd(a),
		newRestaurantsCmd(a),
		newRestaurantDetailCmd(a),
		newRoomCmd(a),
	)
	return root
}

func readCLIConfig(v *viper.Viper) cliConfig {
	return cliConfig{
		APIURL:         v.GetString("api.url"),
		SessionBackend: v.GetString("session.backend"),
		SessionPath:    v.GetString("session.path"),
		RedisAddr:      v.GetString("session.redisAddr"),
		KakaoRESTKey:   v.GetString("kakao.restKey"),
		LogLevel:       v.GetString("logging.level"),
	}
}

func (a *app) setup(cmd *cobra.Command, conf cliConfig) error {
	logging.BootstrapCLILogger(cmd.ErrOrStderr(), conf.LogLevel)

	if a.out == nil {
		a.out = cmd.OutOrStdout()
	}
	if a.errOut == nil {
		a.errOut = cmd.ErrOrStderr()
	}
	if a.in == nil {
		a.in = cmd.InOrStdin()
	}
	if a.tokens == nil {
		store, err := openStore(conf)
		if err != nil {
			return err
		}
		a.tokens = store
	}
	if a.identity == nil {
		a.identity = session.NewIdentityView(a.tokens)
	}
	if a.api == nil {
		a.api = client.New(conf.APIURL, a.tokens)
	}
	if a.places == nil && conf.KakaoRESTKey != "" {
		a.places = locate.NewKakaoPlaces(conf.KakaoRESTKey)
	}
	if a.pick == nil {
		a.pick = rand.Intn
	}
	return nil
}

func openStore(conf cliConfig) (session.Store, error) {
	switch conf.SessionBackend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "", "file":
		path := conf.SessionPath
		if path == "" {
			path = session.DefaultFilePath()
		}
		return session.NewFileStore(path), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis session store at %s: %w", conf.RedisAddr, err)
		}
		return session.NewRedisStore(rdb, "omechoo:"), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", conf.SessionBackend)
	}
}

// shownError has already been printed to the user.
type shownError struct{ error }

func (e shownError) Unwrap() error { return e.error }

// alert prints a failure as one line and hands the error back so the exit code is set.
func (a *app) alert(err error) error {
	fmt.Fprintf(a.errOut, "! %s\n", err)
	return shownError{err}
}

// readFailed is the error state of a failed read: one line plus how to retry.
func (a *app) readFailed(what string, err error, retry string) error {
	fmt.Fprintf(a.errOut, "! could not load %s: %s\n  retry with: %s\n", what, err, retry)
	return shownError{err}
}
