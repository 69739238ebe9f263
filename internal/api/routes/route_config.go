package routes

import (
	"Foodgram-Backend/internal/api/handlers"
	"Foodgram-Backend/internal/middleware"
	"Foodgram-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	RecipeHandler       handlers.RecipeHandler
	CatalogHandler      handlers.CatalogHandler
	SubscriptionHandler handlers.SubscriptionHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.MetricsMiddleware())
	c.Auth()
	c.User()
	c.Recipe()
	c.Catalog()
	c.GuestRoute()
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth/token")
	{
		auth.Post("/login", c.UserHandler.Login)
		auth.Post("/logout", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Logout)
	}
}

func (c *Config) User() {
	requireAuth := c.Middleware.AuthMiddleware(c.JWTService)
	optionalAuth := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	user := c.App.Group("/api/users")
	{
		user.Post("", c.UserHandler.Register)
		user.Get("", optionalAuth, c.UserHandler.GetUsers)
		user.Get("/me", requireAuth, c.UserHandler.Me)
		user.Put("/me/avatar", requireAuth, c.UserHandler.UpdateAvatar)
		user.Delete("/me/avatar", requireAuth, c.UserHandler.DeleteAvatar)
		user.Post("/set_password", requireAuth, c.UserHandler.SetPassword)
		user.Get("/subscriptions", requireAuth, c.SubscriptionHandler.GetSubscriptions)
		user.Get("/:id", optionalAuth, c.UserHandler.GetUser)
		user.Post("/:id/subscribe", requireAuth, c.SubscriptionHandler.Subscribe)
		user.Delete("/:id/subscribe", requireAuth, c.SubscriptionHandler.Unsubscribe)
	}
}

func (c *Config) Recipe() {
	requireAuth := c.Middleware.AuthMiddleware(c.JWTService)
	optionalAuth := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	recipe := c.App.Group("/api/recipes")
	{
		recipe.Get("", optionalAuth, c.RecipeHandler.GetRecipes)
		recipe.Post("", requireAuth, c.RecipeHandler.CreateRecipe)
		recipe.Get("/download_shopping_cart", requireAuth, c.RecipeHandler.DownloadShoppingCart)
		recipe.Get("/:id", optionalAuth, c.RecipeHandler.GetRecipe)
		recipe.Put("/:id", requireAuth, c.RecipeHandler.ReplaceRecipe)
		recipe.Patch("/:id", requireAuth, c.RecipeHandler.PatchRecipe)
		recipe.Delete("/:id", requireAuth, c.RecipeHandler.DeleteRecipe)
		recipe.Get("/:id/get-link", c.RecipeHandler.GetShortLink)
		recipe.Post("/:id/favorite", requireAuth, c.RecipeHandler.AddToFavorites)
		recipe.Delete("/:id/favorite", requireAuth, c.RecipeHandler.RemoveFromFavorites)
		recipe.Post("/:id/shopping_cart", requireAuth, c.RecipeHandler.AddToShoppingCart)
		recipe.Delete("/:id/shopping_cart", requireAuth, c.RecipeHandler.RemoveFromShoppingCart)
	}
}

func (c *Config) Catalog() {
	tag := c.App.Group("/api/tags")
	{
		tag.Get("", c.CatalogHandler.GetTags)
		tag.Get("/:id", c.CatalogHandler.GetTag)
	}

	ingredient := c.App.Group("/api/ingredients")
	{
		ingredient.Get("", c.CatalogHandler.GetIngredients)
		ingredient.Get("/:id", c.CatalogHandler.GetIngredient)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/s/:link", c.RecipeHandler.RedirectShortLink)
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
