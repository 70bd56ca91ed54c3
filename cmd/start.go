/*
Copyright © 2025 silicus-edu
*/
package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/config"
	"github.com/silicus-edu/ta-backend/handler"
	"github.com/silicus-edu/ta-backend/middleware"
	"github.com/silicus-edu/ta-backend/service"
	"github.com/spf13/cobra"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the teaching-assistant server",
	Long:  `Starts the HTTP server for student chat and instructor course management`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		be, err := buildBackend(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}

		wsService := service.NewWebSocketService(be.chat)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(be.chat)
		searchHandler := handler.NewSearchHandler(be.chat)
		courseHandler := handler.NewCourseHandler(be.course)
		pdfHandler := handler.NewDocumentHandler(be.store)
		loginHandler := handler.NewLoginHandler(cfg.AdminPassword)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		// Student routes - open
		apiV1 := router.Group("/api/v1")
		{
			apiV1.GET("/courses", courseHandler.HandleListCourses)
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.GET("/chat/suggestions", chatHandler.HandleSuggestions)
			apiV1.GET("/search", searchHandler.HandleSearch)
			apiV1.GET("/pdf", pdfHandler.ServeDocument)
		}
		router.GET("/ws/chat", gin.WrapF(wsService.HandleChat))
		router.GET("/health", gin.WrapH(wsService.Health()))

		// Admin routes - require admin authentication
		adminRoutes := router.Group("/admin/api/v1")
		adminRoutes.POST("/login", loginHandler.HandleLogin)
		protected := adminRoutes.Group("/")
		protected.Use(middleware.AdminAuthMiddleware)
		{
			protected.GET("/courses", courseHandler.HandleListCourses)
			protected.POST("/courses", courseHandler.HandleCreateCourse)
			protected.DELETE("/courses", courseHandler.HandleDeleteCourse)
			protected.PUT("/courses/rename", courseHandler.HandleRename)
			protected.POST("/courses/rebuild", courseHandler.HandleRebuild)
			protected.GET("/courses/files", courseHandler.HandleListFiles)
			protected.POST("/courses/files", courseHandler.HandleAddFiles)
			protected.DELETE("/courses/files", courseHandler.HandleDeleteFile)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
