package main

import (
	"collegetrack-service/internal/config"
	"collegetrack-service/internal/database/mongo"
	"collegetrack-service/internal/database/redis"
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/handlers"
	"collegetrack-service/internal/middleware"
	"collegetrack-service/internal/reporsitory"
	"collegetrack-service/internal/service"
	"collegetrack-service/pkg/discovery"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/collegetrack", "log", "collegetrack_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.ServiceConfig

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("CollegeTrack Service is healthy")
	})

	// Initialize repositories
	userRepo := reporsitory.NewUserRepository(mongo.Mongo_Database)
	collaboratorRepo := reporsitory.NewCollaboratorRepository(mongo.Mongo_Database)
	taskRepo := reporsitory.NewTaskRepository(mongo.Mongo_Database)
	collegeRepo := reporsitory.NewCollegeRepository(mongo.Mongo_Database)
	essayRepo := reporsitory.NewEssayRepository(mongo.Mongo_Database)
	activityRepo := reporsitory.NewActivityRepository(mongo.Mongo_Database)

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for name, create := range map[string]func(context.Context) error{
		"user":         userRepo.CreateIndexes,
		"collaborator": collaboratorRepo.CreateIndexes,
		"task":         taskRepo.CreateIndexes,
		"college":      collegeRepo.CreateIndexes,
		"essay":        essayRepo.CreateIndexes,
		"activity":     activityRepo.CreateIndexes,
	} {
		if err := create(ctx); err != nil {
			log.Printf("Warning: Failed to create %s indexes: %v", name, err)
		}
	}
	cancel()
	log.Println("Database index creation finished")

	eventPublisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher, events disabled: %v", err)
		// Run with the publishing no-op so services never hold a nil publisher.
		eventPublisher = &event.EventPublisher{}
	}

	// Initialize services
	resolver := service.NewContextResolver(userRepo, collaboratorRepo)
	collaboratorService := service.NewCollaboratorService(userRepo, collaboratorRepo, eventPublisher)
	userService := service.NewUserService(userRepo, resolver)
	taskService := service.NewTaskService(taskRepo)
	collegeService := service.NewCollegeService(collegeRepo)
	activityService := service.NewActivityService(activityRepo)
	critiqueService := service.NewCritiqueService(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	essayService := service.NewEssayService(essayRepo, critiqueService, eventPublisher)
	calendarService := service.NewCalendarService(taskRepo, collegeRepo)
	presenceService := service.NewPresenceService(redis.Redis_Client, 60*time.Second)

	eventConsumer, err := event.NewEventConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.AuthQueueName, userService)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else {
		if err := eventConsumer.Start(); err != nil {
			log.Printf("Warning: Failed to start event consumer: %v", err)
			eventConsumer.Close()
		} else {
			log.Println("Successfully started event consumer")
			defer eventConsumer.Close()
		}
	}

	reminderService := service.NewReminderService(taskRepo, eventPublisher, cfg.Reminder.SweepInterval, cfg.Reminder.Window)
	reminderService.Start()

	// Register handlers behind the gateway identity check
	protected := app.Group("/protected", middleware.RequireUser())
	handlers.NewUserHandler(userService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewCollaboratorHandler(collaboratorService, userService, resolver).RegisterRoutes(protected)
	handlers.NewTaskHandler(taskService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewCollegeHandler(collegeService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewEssayHandler(essayService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewActivityHandler(activityService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewCalendarHandler(calendarService, resolver, collaboratorService).RegisterRoutes(protected)
	handlers.NewPresenceHandler(presenceService, resolver, collaboratorService).RegisterRoutes(protected)

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	reminderService.Stop()

	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	mongo.DisconnectMongo()

	if discovery.ServiceDiscovery != nil {
		if err := discovery.ServiceDiscovery.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
