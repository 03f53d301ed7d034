package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"basketball-tournament-api/auth"
	"basketball-tournament-api/handlers"
	"basketball-tournament-api/middleware"
	"basketball-tournament-api/models"
	"basketball-tournament-api/services"
	"basketball-tournament-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	tokenLifetime := 24 * time.Hour
	if v := os.Getenv("JWT_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid JWT_LIFETIME %q: %v", v, err)
		}
		tokenLifetime = d
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB, enough for logo/image uploads
	})

	// Allowed origins come from the environment, comma-separated.
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if err := utils.InitR2(utils.R2Config{
		AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
	}); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey, which the registration flow relies on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Team{},
		&models.TournamentTeam{},
		&models.Registration{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	tokens := auth.NewTokenIssuer(jwtSecret, tokenLifetime)
	authMW := middleware.RequireAuth(tokens)

	userService := services.NewUserService(db, tokens)
	tournamentService := services.NewTournamentService(db)
	teamService := services.NewTeamService(db)
	registrationService := services.NewRegistrationService(db)

	tournamentService.StartStatusScheduler()

	handlers.SetupAuthRoutes(app, userService)
	handlers.SetupUserRoutes(app, userService, authMW)
	handlers.SetupTournamentRoutes(app, tournamentService, registrationService, authMW)
	handlers.SetupRegistrationRoutes(app, registrationService, authMW)
	handlers.SetupTeamRoutes(app, teamService, authMW)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("Tournament status scheduler running (every 1m)")
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
