package config

import (
	"Foodgram-Backend/internal/api/handlers"
	"Foodgram-Backend/internal/api/routes"
	"Foodgram-Backend/internal/middleware"
	"Foodgram-Backend/internal/utils"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/jwt"
	"Foodgram-Backend/pkg/recipe"
	"Foodgram-Backend/pkg/subscription"
	"Foodgram-Backend/pkg/user"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB, log *logrus.Logger) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		AppName:     "Foodgram",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate
	pageSize := utils.GetConfigInt("PAGE_SIZE", 6)

	// setting up logging and limiter
	logDir := utils.GetConfig("LOG_DIR")
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "create logs directory")
	}
	file, err := os.OpenFile(
		filepath.Join(logDir, "app.log"),
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, errors.Wrap(err, "open access log")
	}
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        utils.GetConfigInt("RATE_LIMIT_MAX", 20),
		Expiration: 1 * time.Second,
	}))

	// utils
	s3, err := storage.NewAwsS3()
	if err != nil {
		return nil, err
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	subscriptionRepository := subscription.NewSubscriptionRepository(db)

	// Service
	jwtService := jwt.NewJWTService(
		utils.GetConfig("JWT_SECRET"),
		time.Duration(utils.GetConfigInt("JWT_TTL_MINUTES", 1440))*time.Minute,
	)
	userService := user.NewUserService(userRepository, subscriptionRepository, jwtService, s3, log)
	catalogService := catalog.NewCatalogService(catalogRepository)
	recipeService := recipe.NewRecipeService(
		recipeRepository,
		catalogRepository,
		subscriptionRepository,
		s3,
		log,
		recipe.Options{
			AppURL:            utils.GetConfig("APP_URL"),
			ShortLinkAttempts: utils.GetConfigInt("SHORT_LINK_ATTEMPTS", 1),
			GenerateShortLink: recipe.NewShortLinkGenerator(utils.GetConfigInt("SHORT_LINK_LENGTH", recipe.DefaultShortLinkLength)),
		},
	)
	subscriptionService := subscription.NewSubscriptionService(subscriptionRepository, userRepository, recipeRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator, log, pageSize)
	catalogHandler := handlers.NewCatalogHandler(catalogService, log)
	recipeHandler := handlers.NewRecipeHandler(recipeService, log, pageSize)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, log, pageSize)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         userHandler,
		RecipeHandler:       recipeHandler,
		CatalogHandler:      catalogHandler,
		SubscriptionHandler: subscriptionHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
