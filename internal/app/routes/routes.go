package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lorebase/internal/app/controllers"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/models/dto"
	"github.com/yigit/lorebase/internal/middleware"
)

// SetupRouter configures all API routes
func SetupRouter(
	router *gin.Engine,
	fileController *controllers.FileController,
	authController *controllers.AuthController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	files := v1.Group("/files")
	{
		// Uploads work anonymously; a valid token only fills created_by
		files.POST("/:ownerKind/:ownerId", authMiddleware.OptionalJWTAuth(), fileController.Upload)
		files.GET("/:fileId", fileController.Download)

		filesAuthProtected := files.Group("")
		filesAuthProtected.Use(authMiddleware.JWTAuth())
		{
			filesAuthProtected.PATCH("/:fileId/deleted", fileController.SetDeleted)
		}
	}

	// Per-kind listings
	v1.GET("/users/:ownerId/files", fileController.ListOwnerFiles(models.OwnerKindUser))
	v1.GET("/information-article-details/:ownerId/files", fileController.ListOwnerFiles(models.OwnerKindInformationArticleDetail))
	v1.GET("/news-details/:ownerId/files", fileController.ListOwnerFiles(models.OwnerKindNewsDetail))
	v1.GET("/owners/:ownerKind/:ownerId/files", fileController.ListFiles)

	v1.GET("/file-types", fileController.ListFileTypes)

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
