package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/adilzhanb/shiftdesk/internal/config"
	"github.com/adilzhanb/shiftdesk/internal/database"
	"github.com/adilzhanb/shiftdesk/internal/handlers"
	"github.com/adilzhanb/shiftdesk/internal/repository"
	cron "github.com/adilzhanb/shiftdesk/internal/scheduler"
	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/adilzhanb/shiftdesk/pkg/logger"
	"github.com/adilzhanb/shiftdesk/pkg/middleware"
	"github.com/adilzhanb/shiftdesk/pkg/push"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	chatRepo := repository.NewChatRepository(db)
	changeRepo := repository.NewChangeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Push sender ---
	var sender push.Sender = push.NoopSender{}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCMSender(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Fatalf("Firebase initialization error: %v", err)
		}
		sender = fcm
	} else {
		logger.Log.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
	}
	fanout := services.NewFanout(notificationRepo, sender, cfg.NotifyActor)

	// --- Services ---
	userService := services.NewUserService(userRepo, changeRepo, fanout)
	shiftService := services.NewShiftService(shiftRepo, userRepo, changeRepo, fanout)
	chatService := services.NewChatService(groupRepo, chatRepo, userRepo, changeRepo, fanout)
	notificationService := services.NewNotificationService(notificationRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg.JWTSecret, cfg.TokenExpiry)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	chatHandler := handlers.NewChatHandler(chatService)
	chatSocketHandler := handlers.NewChatSocketHandler(chatService, cfg.JWTSecret)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/auth/login", userHandler.LoginHandler).Methods("POST")
	router.HandleFunc("/chat/ws", chatSocketHandler.ServeWS).Methods("GET")

	// Shift routes
	shiftRoutes := router.PathPrefix("/shift").Subrouter()
	shiftRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	shiftRoutes.HandleFunc("/add", shiftHandler.AddShiftHandler).Methods("PUT")
	shiftRoutes.HandleFunc("/update/{id}", shiftHandler.UpdateShiftHandler).Methods("PATCH")
	shiftRoutes.HandleFunc("/delete/{id}", shiftHandler.DeleteShiftHandler).Methods("DELETE")
	shiftRoutes.HandleFunc("/request/add", shiftHandler.RequestAddShiftHandler).Methods("POST")
	shiftRoutes.HandleFunc("/request/update/{id}", shiftHandler.RequestUpdateShiftHandler).Methods("POST")
	shiftRoutes.HandleFunc("/request/delete/{id}", shiftHandler.RequestDeleteShiftHandler).Methods("POST")
	shiftRoutes.HandleFunc("/list", shiftHandler.GetShiftsHandler).Methods("GET")

	// Chat routes
	chatRoutes := router.PathPrefix("/chat").Subrouter()
	chatRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	chatRoutes.HandleFunc("/group/new", chatHandler.CreateGroupHandler).Methods("PUT")
	chatRoutes.HandleFunc("/group/{id}/change", chatHandler.ChangeGroupMembersHandler).Methods("PATCH")
	chatRoutes.HandleFunc("/group/{id}/edit", chatHandler.EditGroupHandler).Methods("PATCH")
	chatRoutes.HandleFunc("/group/{id}/message", chatHandler.SendGroupMessageHandler).Methods("PUT")
	chatRoutes.HandleFunc("/group/{id}/messages", chatHandler.GetGroupMessagesHandler).Methods("GET")
	chatRoutes.HandleFunc("/group/{id}", chatHandler.DeleteGroupHandler).Methods("DELETE")
	chatRoutes.HandleFunc("/message", chatHandler.SendDirectMessageHandler).Methods("PUT")
	chatRoutes.HandleFunc("/history/{id}", chatHandler.GetChatHistoryHandler).Methods("GET")

	// Account management routes
	authRoutes := router.PathPrefix("/auth").Subrouter()
	authRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authRoutes.HandleFunc("/employee/new", userHandler.RegisterEmployeeHandler).Methods("PUT")
	authRoutes.HandleFunc("/employee/{uid}/change", userHandler.UpdateEmployeeHandler).Methods("PATCH")
	authRoutes.HandleFunc("/employee/{uid}", userHandler.DeleteEmployeeHandler).Methods("DELETE")
	authRoutes.HandleFunc("/device", userHandler.RegisterDeviceTokenHandler).Methods("POST")
	authRoutes.HandleFunc("/device", userHandler.RemoveDeviceTokenHandler).Methods("DELETE")

	// User routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Audit routes
	changeRoutes := router.PathPrefix("/changes").Subrouter()
	changeRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	changeRoutes.HandleFunc("/{id}", userHandler.GetChangeHistoryHandler).Methods("GET")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the daily cleanup of expired notifications
	cron.StartNotificationCronJobs(notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
