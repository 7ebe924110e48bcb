package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raza141/SchedulerBooker/internal/config"
	"github.com/raza141/SchedulerBooker/internal/handlers"
	"github.com/raza141/SchedulerBooker/internal/middleware"
	"github.com/raza141/SchedulerBooker/internal/repository"
	"github.com/raza141/SchedulerBooker/internal/services"
	"go.uber.org/zap"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) {
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	tutorRepo := repository.NewTutorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	gateway := services.NewStripeGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	paymentService := services.NewPaymentService(
		db,
		sessionRepo,
		paymentRepo,
		gateway,
		cfg.GatewayCurrency,
		cfg.GatewayTimeout,
		logger,
	)
	bookingService := services.NewBookingService(
		db,
		sessionRepo,
		paymentRepo,
		studentRepo,
		tutorRepo,
		paymentService,
		logger,
	)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	studentHandler := handlers.NewStudentHandler(studentRepo)
	tutorHandler := handlers.NewTutorHandler(tutorRepo, bookingService)
	sessionHandler := handlers.NewSessionHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	students := authProtected.Group("/students")
	students.Post("", studentHandler.CreateStudent)
	students.Get("", studentHandler.ListStudents)
	students.Get("/:id", studentHandler.GetStudent)
	students.Put("/:id/status", studentHandler.UpdateStudentStatus)
	students.Delete("/:id", studentHandler.DeleteStudent)

	tutors := authProtected.Group("/tutors")
	tutors.Post("", tutorHandler.CreateTutor)
	tutors.Get("", tutorHandler.ListTutors)
	tutors.Get("/:id", tutorHandler.GetTutor)
	tutors.Put("/:id/status", tutorHandler.UpdateTutorStatus)
	tutors.Get("/:id/availability", tutorHandler.CheckAvailability)

	sessions := authProtected.Group("/sessions")
	sessions.Post("/book", sessionHandler.BookSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/confirm", sessionHandler.ConfirmSession)
	sessions.Put("/:id/end-time", sessionHandler.SetEndTime)
	sessions.Get("/:id/payment", paymentHandler.GetSessionPayment)
	sessions.Post("/:id/pay", paymentHandler.SettleSession)
	sessions.Post("/:id/payment/mark-paid", paymentHandler.MarkPaid)
}
