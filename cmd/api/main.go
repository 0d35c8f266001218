package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/examsim-api/internal/config"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/handler"
	"github.com/yourusername/examsim-api/internal/middleware"
	pgRepo "github.com/yourusername/examsim-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/examsim-api/internal/repository/redis"
	"github.com/yourusername/examsim-api/internal/service"
	"github.com/yourusername/examsim-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	paymentRepo := pgRepo.NewPaymentRepo(db)
	feedbackRepo := pgRepo.NewFeedbackRepo(db)

	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	sessionRepo, err := redisRepo.NewSessionRepo(redisClient, sessionTTL)
	if err != nil {
		log.Printf("Failed to initialize SessionRepo: %v", err)
		os.Exit(1)
	}

	// Почтовый сервис: Resend, если включен, иначе заглушка
	var emailService service.EmailService
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.AdminEmail)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	} else {
		emailService = &service.NoopEmailService{}
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo)
	quizService := service.NewQuizService(questionRepo)
	resultService := service.NewResultService(questionRepo, scoreRepo)
	accessService := service.NewAccessService(paymentRepo)
	paymentService := service.NewPaymentService(paymentRepo, cfg.Paystack)
	userService := service.NewUserService(userRepo, scoreRepo, feedbackRepo, emailService, cfg.Uploads)
	scoreExporter := service.NewScoreExporter(scoreRepo)

	googleService, err := service.NewGoogleOAuthService(cfg.Google)
	if err != nil {
		log.Printf("Google OAuth disabled: %v", err)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем middleware
	sessionMiddleware := middleware.NewSessionMiddleware(
		sessionRepo,
		cfg.Session.CookieName,
		int(sessionTTL.Seconds()),
		isProduction,
	)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, googleService, sessionMiddleware)
	quizHandler := handler.NewQuizHandler(quizService, resultService, accessService, sessionMiddleware)
	userHandler := handler.NewUserHandler(userService, resultService, scoreExporter, sessionMiddleware)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Загруженные аватары
	router.Static("/"+cfg.Uploads.Dir, "./"+cfg.Uploads.Dir)

	// Все маршруты работают с сессией из cookie
	router.Use(sessionMiddleware.Load())

	// Выбор тарифа и каталог предметов
	router.GET("/free-courses", quizHandler.SelectTier(entity.ModeFree))
	router.GET("/paid-courses", quizHandler.SelectTier(entity.ModePaid))
	router.GET("/study-courses", quizHandler.SelectTier(entity.ModeStudy))

	// Прохождение теста
	router.POST("/configure-test", quizHandler.ConfigureTest)
	router.GET("/quiz", quizHandler.StartQuiz)
	router.POST("/submit", quizHandler.Submit)
	router.GET("/result", quizHandler.GetResult)
	router.GET("/review", quizHandler.GetReview)

	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.AuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			if googleService != nil {
				authGroup.POST("/google", authHandler.GoogleAuth)
			}
			authGroup.POST("/logout", authHandler.Logout)
		}

		// Вспомогательные JSON-маршруты теста
		api.GET("/course-info", quizHandler.GetCourseInfo)
		api.GET("/available-codes", quizHandler.GetAvailableCodes)
		api.GET("/questions", quizHandler.GetQuestions)
		api.GET("/review-data", quizHandler.GetReview)

		// Лидерборд (публичный маршрут)
		api.GET("/leaderboard", userHandler.Leaderboard)

		// Пользователи
		users := api.Group("/users")
		users.Use(sessionMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.Me)
			users.PUT("/me", userHandler.UpdateMe)
			users.POST("/me/picture", userHandler.UploadPicture)
			users.GET("/me/scores", userHandler.ScoreHistory)
		}

		// Отзывы
		authed := api.Group("")
		authed.Use(sessionMiddleware.RequireAuth())
		{
			authed.POST("/feedback", userHandler.SubmitFeedback)

			// Платежи
			payments := authed.Group("/payments")
			payments.Use(rateLimiter.Limit(middleware.PaymentRateLimitConfig()))
			{
				payments.GET("/verify/:reference", paymentHandler.Verify)
				payments.GET("/status", paymentHandler.Status)
			}

			// Администрирование
			authed.GET("/admin/scores/export", userHandler.ExportScores)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exiting")
}
