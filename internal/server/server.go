package server

import (
	"net/http"

	"reqtrack/internal/config"
	"reqtrack/internal/handler"
	"reqtrack/internal/middleware"
	"reqtrack/internal/repository"
	"reqtrack/internal/service"
	"reqtrack/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// New assembles the full HTTP surface: repositories, services, handlers and
// middleware. Keeping assembly out of main lets tests stand up the same router
// against their own database.
func New(cfg config.Config, db *gorm.DB, store storage.Store, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	boardRepo := repository.NewBoardRepository(db)

	userService := service.NewUserService(userRepo, db)
	requestService := service.NewRequestService(txManager, requestRepo, auditRepo, userRepo, commentRepo, attachmentRepo, store, cfg.StrictIntake)
	commentService := service.NewCommentService(txManager, requestRepo, commentRepo, auditRepo)
	attachmentService := service.NewAttachmentService(txManager, requestRepo, attachmentRepo, store, cfg.MaxAttachmentBytes())
	auditService := service.NewAuditService(auditRepo, requestRepo)
	boardService := service.NewBoardService(boardRepo)
	statisticsService := service.NewStatisticsService(db)

	root := router.Group("")
	handler.NewUserHandler(userService).RegisterRoutes(root)
	handler.NewRequestHandler(requestService, auditService).RegisterRoutes(root)
	handler.NewCommentHandler(commentService).RegisterRoutes(root)
	handler.NewAttachmentHandler(attachmentService).RegisterRoutes(root)
	handler.NewAuditHandler(auditService).RegisterRoutes(root)
	handler.NewBoardHandler(boardService).RegisterRoutes(root)
	handler.NewStatisticsHandler(statisticsService).RegisterRoutes(root)

	return router
}
