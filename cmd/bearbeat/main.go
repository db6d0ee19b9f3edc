package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bearbeat/bearbeat/app/controllers"
	"github.com/bearbeat/bearbeat/app/repository"
	"github.com/bearbeat/bearbeat/internal/pkg/cache"
	"github.com/bearbeat/bearbeat/internal/pkg/cdn"
	"github.com/bearbeat/bearbeat/internal/pkg/checkout"
	"github.com/bearbeat/bearbeat/internal/pkg/config"
	"github.com/bearbeat/bearbeat/internal/pkg/database"
	"github.com/bearbeat/bearbeat/internal/pkg/env"
	"github.com/bearbeat/bearbeat/internal/pkg/hcaptcha"
	"github.com/bearbeat/bearbeat/internal/pkg/jobqueue"
	"github.com/bearbeat/bearbeat/internal/pkg/mail"
	"github.com/bearbeat/bearbeat/internal/pkg/marketing"
	"github.com/bearbeat/bearbeat/internal/pkg/packstore"
	"github.com/bearbeat/bearbeat/internal/pkg/payment"
	"github.com/bearbeat/bearbeat/internal/pkg/router"
)

func main() {
	app, cfg := NewApplication()

	// graceful shutdown: drain the job queue before the listener closes
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()
	cfg := config.Load()

	database.SetupDatabase(cfg.DB)
	cache.SetupCache(cfg.Cache)
	repository.InitializeFactory(database.GetDB())

	// background jobs: delivery emails and marketing sync
	jobqueue.SetDependencies(jobqueue.Dependencies{
		Marketing: marketing.NewService(
			marketing.NewBrevoClient(cfg.Brevo),
			marketing.NewManyChatClient(cfg.ManyChat),
			marketing.NewTwilioClient(cfg.Twilio),
		),
		Mailer: mail.NewMailer(cfg.SMTP),
		App:    cfg.App,
	})
	manager := jobqueue.GetManager()
	manager.Start()

	store, err := packstore.NewClient(cfg.PackStore)
	if err != nil {
		log.Printf("[PackStore] disabled: %v", err)
	}

	controllers.Initialize(controllers.Dependencies{
		Config: cfg,
		Checkout: checkout.NewService(
			checkout.NewRepository(database.GetDB()),
			jobqueue.NewPublisher(manager.GetQueue()),
		),
		Stripe:    payment.NewStripeClient(cfg.Stripe),
		PayPal:    payment.NewPayPalClient(cfg.PayPal),
		HCaptcha:  hcaptcha.NewClient(cfg.HCaptcha),
		CDN:       cdn.NewBunnySigner(cfg.Bunny),
		PackStore: store,
		Mailer:    mail.NewMailer(cfg.SMTP),
	})

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "Bear Beat",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// the checkout completion page is served from the shop domain
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.PublicDomain,
		AllowCredentials: true,
	}))

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, cfg)

	return app, cfg
}
