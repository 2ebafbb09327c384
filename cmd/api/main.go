package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"

	"voxa/internal/auth"
	"voxa/internal/config"
	"voxa/internal/db"
	"voxa/internal/domain/groups"
	"voxa/internal/domain/storage"
	"voxa/internal/mailer"
	"voxa/internal/maps"
	"voxa/internal/notifications"
	"voxa/internal/ratelimiter"
	"voxa/internal/ws"

	"github.com/9ssi7/exponent"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "0.9.0"

//	@title			Voxa API
//	@description	API for Voxa, a social travel review application.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Logger
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Database
	pool, err := db.New(
		cfg.DB.Addr,
		cfg.DB.MaxConns,
		cfg.DB.MaxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}

	defer pool.Close()
	logger.Info("database connection pool established")

	//storage
	store := storage.NewContainer(pool)

	//cloudinary
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		logger.Fatal(err)
	}

	// client to send activation and password reset email
	mailtrap, err := mailer.NewMailTrapClient(cfg.Mail.MailtrapAPIKey, cfg.Mail.FromEmail)
	if err != nil {
		logger.Fatal(err)
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.RateLimiter.RequestsPerTimeFrame,
		cfg.RateLimiter.TimeFrame,
	)

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.Token.Secret,
		cfg.Token.RefreshSecret,
		cfg.Token.Issuer,
		cfg.Token.Issuer,
		cfg.Token.AccessExp,
		cfg.Token.RefreshExp,
	)

	// Places provider
	placesProvider, err := maps.NewGoogleProvider(cfg.MapsAPIKey)
	if err != nil {
		logger.Fatal(err)
	}

	// Realtime hub for group chat
	hub := ws.NewHub(logger)
	go hub.Run()

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		cld:           cld,
		mailer:        mailtrap,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		push:          notifications.NewExpoAdapter(exponent.NewClient()),
		places:        placesProvider,
		hub:           hub,
	}

	app.inviteCoder, err = groups.NewInviteCoder(cfg.Token.Secret)
	if err != nil {
		logger.Fatal(err)
	}

	app.pruneStalePushTokensDaily()

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return pool.Stat()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
