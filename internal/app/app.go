package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/andy/billbook/internal/config"
	"github.com/andy/billbook/internal/crypto"
	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/lock"
	"github.com/andy/billbook/internal/repository"
	"github.com/andy/billbook/internal/service"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Logger *zap.Logger

	// Repositories
	ProductRepo  repository.ProductRepository
	ClientRepo   repository.ClientRepository
	InvoiceRepo  repository.InvoiceRepository
	SettingsRepo repository.SettingsRepository

	// Services
	InvoiceService service.InvoiceService
	ReportService  service.ReportService

	// PIN gate
	Gate *lock.Gate
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Opening the configured database (with the keychain key for sqlcipher)
// 3. Running migrations
// 4. Creating repositories, services and the PIN gate
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	database, err := openDatabase(cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	if err := database.RunMigrations(ctx); err != nil {
		database.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("database ready",
		zap.String("driver", string(database.Driver())),
	)

	a := wire(cfg, database, logger)
	return a, nil
}

// wire builds repositories and services on an open, migrated database
func wire(cfg *config.Config, database *db.DB, logger *zap.Logger) *App {
	productRepo := repository.NewProductRepo(database)
	clientRepo := repository.NewClientRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	settingsRepo := repository.NewSettingsRepo(database)

	allocator := service.NewNumberAllocator(
		cfg.Invoice.NumberPrefix,
		cfg.Invoice.NumberWidth,
		logger.Named("allocator"),
	)
	invoiceService := service.NewInvoiceService(
		productRepo,
		clientRepo,
		invoiceRepo,
		repository.NewTransactor(database),
		allocator,
		logger.Named("invoice_service"),
	)
	reportService := service.NewReportService(invoiceRepo)

	return &App{
		Config:         cfg,
		DB:             database,
		Logger:         logger,
		ProductRepo:    productRepo,
		ClientRepo:     clientRepo,
		InvoiceRepo:    invoiceRepo,
		SettingsRepo:   settingsRepo,
		InvoiceService: invoiceService,
		ReportService:  reportService,
		Gate:           lock.NewGate(settingsRepo, config.UnlockFlagPath()),
	}
}

func openDatabase(cfg config.DatabaseConfig) (*db.DB, error) {
	switch db.Driver(cfg.Driver) {
	case db.DriverPostgres:
		database, err := db.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return database, nil

	case db.DriverSQLCipher, "":
		password, err := encryptionKey()
		if err != nil {
			return nil, err
		}
		database, err := db.Open(cfg.Path, password)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return database, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// encryptionKey returns the SQLCipher key, asking for one on first run
func encryptionKey() (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}

	return password, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Settings returns the business settings, creating defaults on first use
func (a *App) Settings(ctx context.Context) (*domain.Settings, error) {
	return a.SettingsRepo.Get(ctx)
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your products, clients and invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keychain.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
