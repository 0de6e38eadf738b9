package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/daehan00/omechoo/api/controllers"
	"github.com/daehan00/omechoo/api/transport"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/storage"
	"github.com/daehan00/omechoo/token"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"net/http"
	"os"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

type storages struct {
	rooms        storage.RoomStorage
	participants storage.ParticipantStorage
	votes        storage.VoteStorage
	close        func() error
}

func (s *Server) Start() {
	r := transport.NewRouter(s.config.GinMode, s.config.CORSOrigins)

	// Create storage
	stores, err := s.openStorage(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to open %s storage: %v", s.config.Driver, err)
		panic("failed to open storage")
	}

	//Register controllers
	issuer := token.NewIssuer(s.config.JWTSecret, s.config.TokenTTL)
	roomController := controllers.NewRoomController(stores.rooms, stores.participants, stores.votes, issuer, s.config.BaseURL)
	roomController.RegisterRoutes(r)
	healthController := controllers.NewHealthController()
	healthController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config, stores.close)
	} else {
		startLambda(r)
	}
}

func (s *Server) openStorage(ctx context.Context) (*storages, error) {
	switch s.config.Driver {
	case "dynamodb":
		client, err := storage.NewDynamoClient(ctx, s.config.Region, s.config.Endpoint)
		if err != nil {
			return nil, err
		}
		return &storages{
			rooms:        &storage.DynamoRoomStorage{Client: client, TableName: s.config.TableNameRooms},
			participants: &storage.DynamoParticipantStorage{Client: client, TableName: s.config.TableNameParticipants, RoomsTableName: s.config.TableNameRooms},
			votes:        &storage.DynamoVoteStorage{Client: client, TableName: s.config.TableNameVotes, RoomsTableName: s.config.TableNameRooms},
			close:        func() error { return nil },
		}, nil
	case "sqlite", "postgres":
		db, err := storage.OpenSQL(s.config.Driver, s.config.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &storages{
			rooms:        &storage.SQLRoomStorage{DB: db},
			participants: &storage.SQLParticipantStorage{DB: db},
			votes:        &storage.SQLVoteStorage{DB: db},
			close:        sqlDB.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.config.Driver)
	}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal serves HTTP until SIGINT/SIGTERM, then drains requests and closes storage.
func startLocal(engine *gin.Engine, config *Config, closeStorage func() error) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: engine,
	}

	go func() {
		logging.Log.Infof("Starting server on http://localhost:%d", config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatalf("Failed to run server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logging.Log.Info("Graceful shutdown initiated...")
				return srv.Shutdown(ctx)
			},
			"storage": func(ctx context.Context) error {
				return closeStorage()
			},
		},
	)

	exitCode := <-wait
	logging.Log.Infof("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
