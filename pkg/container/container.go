package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"pos-backend/internal/config"
	"pos-backend/internal/infrastructure/cache"
	"pos-backend/internal/infrastructure/database"
	"pos-backend/internal/infrastructure/storage"

	categoryRepo "pos-backend/internal/domains/category/repository"
	importerHandler "pos-backend/internal/domains/importer/handler"
	importerJob "pos-backend/internal/domains/importer/job"
	"pos-backend/internal/domains/importer/notifier"
	importerRepo "pos-backend/internal/domains/importer/repository"
	importerService "pos-backend/internal/domains/importer/service"
	productRepo "pos-backend/internal/domains/product/repository"
	userRepo "pos-backend/internal/domains/user/repository"
	userService "pos-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Both binaries build one:
// the API serves the job control endpoints, the worker runs the jobs.
// Everything in here is a singleton for the process lifetime.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *cache.RedisClient
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client

	// Repositories
	CategoryRepo categoryRepo.RepositoryInterface
	ProductRepo  productRepo.RepositoryInterface
	UserRepo     userRepo.RepositoryInterface
	ImportRepo   importerRepo.RepositoryInterface

	// Services
	UserService   userService.ServiceInterface
	Notifier      importerService.Notifier
	Enqueuer      importerService.TaskEnqueuer
	ImportService importerService.ServiceInterface
	ImportRunner  *importerService.Runner

	// Handlers
	ImportHandler *importerHandler.ImportHandler
}

// NewContainer initializes the whole dependency graph in layer order:
// config, infrastructure, repositories, services, handlers. An error at any
// layer aborts startup.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisClient := cache.NewRedisClient(cfg.Redis)
	if err := redisClient.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Redis = redisClient
	log.Println("✅ Redis connected")

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	log.Println("🪣 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ Object storage ready")

	// ========================================
	// STEP 5: REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 6: SERVICES
	// ========================================
	c.initServices()

	// ========================================
	// STEP 7: HANDLERS
	// ========================================
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CategoryRepo = categoryRepo.NewCategoryRepository(pool)
	c.ProductRepo = productRepo.NewProductRepository(pool)
	c.UserRepo = userRepo.NewUserRepository(pool)
	c.ImportRepo = importerRepo.NewImportRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo)
	c.Notifier = notifier.NewRedisNotifier(c.Redis.Client)
	c.Enqueuer = importerJob.NewEnqueuer(c.AsynqClient)

	c.ImportService = importerService.NewImportService(
		c.ImportRepo,
		c.Storage,
		c.Enqueuer,
		c.Notifier,
		c.Config.Import,
	)

	processors := []importerService.RowProcessor{
		importerService.NewProductProcessor(c.ProductRepo, c.CategoryRepo),
		importerService.NewStockProcessor(c.ProductRepo),
		importerService.NewUserProcessor(c.UserService, c.UserRepo),
	}
	c.ImportRunner = importerService.NewRunner(
		c.ImportRepo,
		c.Storage,
		c.Notifier,
		processors,
		c.Config.Import,
	)
}

func (c *Container) initHandlers() {
	c.ImportHandler = importerHandler.NewImportHandler(c.ImportService, c.Notifier, c.Config.Import)
}

// Cleanup releases infrastructure resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	log.Println("✅ Container cleanup completed")
}
