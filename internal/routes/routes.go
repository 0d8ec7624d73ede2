package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"github.com/example/campsbay/internal/config"
	"github.com/example/campsbay/internal/handlers"
	"github.com/example/campsbay/internal/mailer"
	"github.com/example/campsbay/internal/middleware"
	"github.com/example/campsbay/internal/otp"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, sessions *session.Store) {
	smtpMailer := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail)
	otpService := otp.NewService(db)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService, smtpMailer, sessions)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, otpService, smtpMailer, sessions)
	artistHandler := handlers.NewArtistHandler(db)
	artworkHandler := handlers.NewArtworkHandler(db)
	cartHandler := handlers.NewCartHandler(db, sessions)
	checkoutHandler := handlers.NewCheckoutHandler(db, smtpMailer, sessions)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/login", authHandler.Login)
	auth.Post("/resend-otp", authHandler.ResendOTP)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-reset-code", resetHandler.VerifyResetCode)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Public catalog
	artists := api.Group("/artists")
	artists.Get("/", artistHandler.ListArtists)
	artists.Get("/:id", artistHandler.GetArtist)

	artworks := api.Group("/artworks")
	artworks.Get("/", artworkHandler.ListArtworks)
	artworks.Get("/:id", artworkHandler.GetArtwork)

	// Cart and checkout work for guests and authenticated users alike.
	shop := api.Group("", middleware.OptionalAuth(cfg))

	cart := shop.Group("/cart")
	cart.Get("/", cartHandler.ViewCart)
	cart.Post("/", cartHandler.AddToCart)
	cart.Put("/:id", cartHandler.UpdateCartItem)
	cart.Delete("/:id", cartHandler.RemoveFromCart)

	shop.Get("/checkout", checkoutHandler.Checkout)
	shop.Post("/checkout", checkoutHandler.ProcessCheckout)
	shop.Get("/checkout/confirmation/:reference", checkoutHandler.OrderConfirmation)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Get("/orders", checkoutHandler.ListOrders)
	protected.Get("/orders/:reference", checkoutHandler.GetOrder)

	// Owner-side catalog management
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireOwner(db))

	admin.Post("/artists", artistHandler.CreateArtist)
	admin.Put("/artists/:id", artistHandler.UpdateArtist)
	admin.Delete("/artists/:id", artistHandler.DeleteArtist)

	admin.Post("/artworks", artworkHandler.CreateArtwork)
	admin.Put("/artworks/:id", artworkHandler.UpdateArtwork)
	admin.Delete("/artworks/:id", artworkHandler.DeleteArtwork)
	admin.Post("/artworks/:id/mark-sold", artworkHandler.MarkSold)
	admin.Post("/artworks/:id/mark-available", artworkHandler.MarkAvailable)
}
