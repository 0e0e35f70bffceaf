package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/config"
	"github.com/minatogawa/project-board-api/internal/database"
	"github.com/minatogawa/project-board-api/internal/handlers"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("board_session", store))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	timeRepo := repository.NewTimeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Services
	recorder := services.NewHistoryRecorder(historyRepo)
	notifier := services.LogNotifier{}

	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, columnRepo)
	columnService := services.NewColumnService(columnRepo, taskRepo, recorder)
	taskService := services.NewTaskService(taskRepo, columnRepo, projectRepo, userRepo, historyRepo, recorder, notifier, cfg.OnMissingColumn)
	dependencyService := services.NewDependencyService(depRepo, taskRepo, recorder, notifier)
	subtaskService := services.NewSubtaskService(subtaskRepo, taskRepo, recorder)
	tagService := services.NewTagService(tagRepo, taskRepo, recorder)
	timeService := services.NewTimeService(timeRepo, taskRepo, recorder)
	statisticsService := services.NewStatisticsService(taskRepo, subtaskRepo, depRepo, timeRepo, historyRepo)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	columnHandler := handlers.NewColumnHandler(columnService)
	taskHandler := handlers.NewTaskHandler(taskService, aiService)
	dependencyHandler := handlers.NewDependencyHandler(dependencyService)
	subtaskHandler := handlers.NewSubtaskHandler(subtaskService)
	tagHandler := handlers.NewTagHandler(tagService)
	timeHandler := handlers.NewTimeTrackingHandler(timeService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Board API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.POST("/join", projectHandler.JoinProject)

			scoped := projects.Group("/:id")
			scoped.Use(middleware.RequireProjectAccess())
			{
				scoped.GET("", projectHandler.GetProject)
				scoped.PUT("", middleware.RequireProjectManager(), projectHandler.UpdateProject)
				scoped.DELETE("", middleware.RequireProjectManager(), projectHandler.DeleteProject)
				scoped.POST("/regenerate-code", middleware.RequireProjectManager(), projectHandler.RegenerateInviteCode)
				scoped.GET("/members", projectHandler.ListMembers)
				scoped.DELETE("/members/:user_id", middleware.RequireProjectManager(), projectHandler.RemoveMember)

				// Board columns
				scoped.GET("/columns", columnHandler.ListColumns)
				scoped.POST("/columns", columnHandler.CreateColumn)
				scoped.PUT("/columns/reorder", columnHandler.ReorderColumns)
				scoped.DELETE("/columns/:column_id", columnHandler.DeleteColumn)

				// Tasks within the project
				scoped.GET("/tasks", taskHandler.ListTasks)
				scoped.POST("/tasks", taskHandler.CreateTask)
				scoped.PUT("/tasks/reorder", taskHandler.ReorderTasks)

				// Rollups
				scoped.GET("/statistics", statisticsHandler.GetProjectStatistics)
				scoped.GET("/activity", statisticsHandler.GetActivityStatistics)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireTaskAccess())
		{
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move", taskHandler.MoveTask)
			tasks.GET("/:id/history", taskHandler.GetTaskHistory)
			tasks.GET("/:id/statistics", statisticsHandler.GetTaskStatistics)
			tasks.POST("/:id/suggest-subtasks", taskHandler.SuggestSubtasks)

			// Dependency graph
			tasks.POST("/:id/dependencies", dependencyHandler.AddDependency)
			tasks.GET("/:id/dependencies", dependencyHandler.ListDependencies)
			tasks.DELETE("/:id/dependencies/:dependency_id", dependencyHandler.DeleteDependency)

			// Subtasks
			tasks.POST("/:id/subtasks", subtaskHandler.AddSubtask)
			tasks.GET("/:id/subtasks", subtaskHandler.ListSubtasks)
			tasks.PATCH("/:id/subtasks/:subtask_id", subtaskHandler.UpdateSubtask)
			tasks.DELETE("/:id/subtasks/:subtask_id", subtaskHandler.DeleteSubtask)

			// Tags
			tasks.POST("/:id/tags", tagHandler.AddTag)
			tasks.GET("/:id/tags", tagHandler.ListTags)
			tasks.DELETE("/:id/tags/:tag_id", tagHandler.RemoveTag)

			// Time tracking
			tasks.POST("/:id/estimates", timeHandler.AddEstimate)
			tasks.GET("/:id/estimates", timeHandler.ListEstimates)
			tasks.POST("/:id/time-entries", timeHandler.AddTimeEntry)
			tasks.GET("/:id/time-entries", timeHandler.ListTimeEntries)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
