package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/rojgarhq/rojgar-backend/internal/config"
	"github.com/rojgarhq/rojgar-backend/internal/db"
	"github.com/rojgarhq/rojgar-backend/internal/handlers"
	"github.com/rojgarhq/rojgar-backend/internal/mail"
	"github.com/rojgarhq/rojgar-backend/internal/middleware"
	"github.com/rojgarhq/rojgar-backend/internal/otp"
	"github.com/rojgarhq/rojgar-backend/internal/realtime"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
	"github.com/rojgarhq/rojgar-backend/internal/services/chat"
	"github.com/rojgarhq/rojgar-backend/internal/services/cvparser"
	"github.com/rojgarhq/rojgar-backend/internal/services/jobs"
	"github.com/rojgarhq/rojgar-backend/internal/services/khalti"
	"github.com/rojgarhq/rojgar-backend/internal/services/payments"
	"github.com/rojgarhq/rojgar-backend/internal/services/proposals"
	"github.com/rojgarhq/rojgar-backend/internal/services/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	// repositories
	userRepo := repository.NewUserRepository(gdb)
	jobRepo := repository.NewJobRepository(gdb)
	proposalRepo := repository.NewProposalRepository(gdb)
	taskRepo := repository.NewTaskRepository(gdb)
	messageRepo := repository.NewMessageRepository(gdb)
	fileRepo := repository.NewFileRepository(gdb)
	profileRepo := repository.NewProfileRepository(gdb)
	paymentRepo := repository.NewPaymentRepository(gdb)
	milestoneRepo := repository.NewMilestoneRepository(gdb)

	// services
	jobSvc := jobs.NewService(jobRepo, taskRepo, milestoneRepo)
	proposalSvc := proposals.NewService(jobRepo, proposalRepo)
	taskSvc := tasks.NewService(taskRepo, proposalRepo)
	chatSvc := chat.NewService(proposalRepo, messageRepo)
	gateway := khalti.NewService(cfg.KhaltiSecretKey, cfg.KhaltiEnv)
	paymentSvc := payments.NewService(
		paymentRepo, jobRepo, proposalRepo, userRepo, gateway,
		cfg.FrontendBaseURL, cfg.FrontendBaseURL+"/payments/verify",
	)
	parser := cvparser.NewService(cfg.LLMAPIKey, cfg.LLMAPIURL)

	taskSvc.StartAutoApprovalWorker(cfg.ReviewDays)

	// handlers
	authH := &handlers.AuthHandler{
		Users:     userRepo,
		OTP:       otp.NewStore(rdb),
		Mailer:    mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom),
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		Users:           userRepo,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	jobH := handlers.NewJobHandler(jobSvc)
	proposalH := handlers.NewProposalHandler(proposalSvc)
	taskH := handlers.NewTaskHandler(taskSvc)
	chatH := handlers.NewChatHandler(chatSvc, hub, rdb, cfg.JWTSecret)
	fileH := handlers.NewFileHandler(fileRepo, jobRepo, proposalRepo, cfg.UploadDir)
	profileH := handlers.NewProfileHandler(profileRepo, parser)
	paymentH := handlers.NewPaymentHandler(paymentSvc)
	dashboardH := handlers.NewDashboardHandler(jobSvc, proposalSvc)

	app := fiber.New(fiber.Config{
		BodyLimit: 11 << 20, // uploads are capped at 10MB plus form overhead
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/verify-otp", authH.VerifyOTP)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// protected (JWT via cookie or bearer)
	protected := api.Group("/",
		middleware.RequireJWT(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)
	protected.Patch("/me/role", authH.UpdateRole)
	protected.Post("/me/onboarding", authH.SetOnboarding)
	protected.Get("/dashboard", dashboardH.Overview)

	// jobs
	protected.Post("/client/jobs", middleware.RequireRoles("client"), jobH.Create)
	protected.Get("/client/jobs", middleware.RequireRoles("client"), jobH.ListMine)
	protected.Delete("/client/jobs/:id", middleware.RequireRoles("client"), jobH.Cancel)
	protected.Post("/client/jobs/:id/complete", middleware.RequireRoles("client"), jobH.Complete)
	protected.Get("/jobs/open", jobH.ListOpen)
	protected.Get("/jobs/:id", jobH.Get)
	protected.Get("/jobs/:id/milestones", jobH.ListMilestones)

	// proposals
	protected.Post("/proposals/:jobId", middleware.RequireRoles("freelancer"), proposalH.Submit)
	protected.Get("/proposals/client", middleware.RequireRoles("client"), proposalH.ListForClient)
	protected.Get("/proposals/freelancer", middleware.RequireRoles("freelancer"), proposalH.ListForFreelancer)
	protected.Get("/proposals/accepted", proposalH.ListAccepted)
	protected.Get("/proposals/:id", proposalH.Get)
	protected.Patch("/proposals/:id/:action", middleware.RequireRoles("client"), proposalH.Decide)

	// tasks
	protected.Post("/tasks", middleware.RequireRoles("client"), taskH.Create)
	protected.Get("/tasks/job/:jobId", taskH.ListByJob)
	protected.Patch("/tasks/:id/status", taskH.UpdateStatus)

	// chat
	protected.Get("/chat/proposal/:proposalId/messages", chatH.History)
	protected.Post("/chat/proposal/:proposalId/messages", chatH.Send)

	// files
	protected.Post("/files/upload", fileH.Upload)
	protected.Get("/files/mine", fileH.ListMine)
	protected.Get("/files/job/:jobId", fileH.ListByJob)
	protected.Get("/files/:id/download", fileH.Download)
	protected.Get("/files/:id/view", fileH.View)
	protected.Delete("/files/:id", fileH.Delete)

	// profiles & cv parsing
	protected.Post("/cv/parse", profileH.ParseCV)
	protected.Post("/profiles", profileH.Create)
	protected.Get("/profiles", profileH.List)
	protected.Get("/profiles/:id", profileH.Get)
	protected.Put("/profiles/:id", profileH.Update)

	// payments
	protected.Post("/payments/initiate", middleware.RequireRoles("client"), paymentH.Initiate)
	protected.Get("/payments/verify", paymentH.Verify)
	protected.Get("/payments/history", paymentH.History)

	// WebSocket endpoint (token auth via query param)
	app.Get("/ws/chat", websocket.New(chatH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
