package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/tessera-canvas/tessera/internal/cache"
	"github.com/tessera-canvas/tessera/internal/config"
	"github.com/tessera-canvas/tessera/internal/http_api"
	"github.com/tessera-canvas/tessera/internal/oracle"
	"github.com/tessera-canvas/tessera/internal/repository"
	"github.com/tessera-canvas/tessera/internal/tessera"
	"github.com/tessera-canvas/tessera/internal/wallet"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "tessera",
		Usage: "Tessera is a shared pixel-canvas marketplace service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API port"},
			&cli.StringFlag{Name: "treasury-address", Aliases: []string{"T"}, Usage: "Treasury wallet address receiving top-up payments"},
			&cli.StringFlag{Name: "redis-addr", Aliases: []string{"r"}, Usage: "Redis address for the canvas cache"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("treasury-address") {
		cfg.TreasuryAddress = c.String("treasury-address")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize the payment oracle
	paymentOracle := oracle.NewSolanaOracle(cfg, log)

	// Initialize the wallet signature verifier
	verifier := wallet.NewEd25519Verifier()

	// Initialize the optional canvas cache
	var canvasCache tessera.CanvasCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		canvasCache = cache.NewRedisCache(client, cfg.CacheTTL, log)
		log.Info("Canvas cache enabled", "addr", cfg.RedisAddr)
	}

	// Create Tessera instance
	tesseraApp := tessera.NewTessera(db, paymentOracle, verifier, canvasCache, log, cfg)

	apiServer := http_api.NewHTTPServer(tesseraApp, cfg.APIPort, log)

	go apiServer.Start()

	// Block until a termination signal arrives, then shut down gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}
