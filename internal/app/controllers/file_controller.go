// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/models/dto"
	"github.com/yigit/lorebase/internal/app/services"
	"github.com/yigit/lorebase/internal/middleware"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// FileController handles file upload, download, lifecycle and listing
type FileController struct {
	store     services.FileStore
	retriever services.FileRetriever
	lifecycle services.FileLifecycleManager
	lister    services.OwnerFileLister
	catalog   services.FileTypeCatalog
	logger    zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(
	store services.FileStore,
	retriever services.FileRetriever,
	lifecycle services.FileLifecycleManager,
	lister services.OwnerFileLister,
	catalog services.FileTypeCatalog,
	logger zerolog.Logger,
) *FileController {
	return &FileController{
		store:     store,
		retriever: retriever,
		lifecycle: lifecycle,
		lister:    lister,
		catalog:   catalog,
		logger:    logger,
	}
}

// Upload stores a file for an owner
// @Summary Upload a file
// @Description Stores the multipart file under the owner's directory and links it to the owner
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param ownerKind path string true "Owner kind alias" Enums(User, InformationArticleDetail, NewsDetail)
// @Param ownerId path int true "Owner ID"
// @Param file formData file true "File content"
// @Success 201 {object} dto.APIResponse{data=dto.FileIDResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 413 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /files/{ownerKind}/{ownerId} [post]
func (c *FileController) Upload(ctx *gin.Context) {
	req := services.AddFileRequest{
		OwnerID:       parseID(ctx.Param("ownerId")),
		FileTypeAlias: ctx.Param("ownerKind"),
	}
	if userID, ok := middleware.GetUserID(ctx); ok {
		req.CreatedBy = &userID
	}

	fileHeader, err := ctx.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Left empty so the service reports the first missing field
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "File exceeds the upload size limit")))
			return
		}
		c.logger.Warn().Err(err).Msg("Invalid multipart upload")
		ctx.JSON(http.StatusBadRequest, dto.NewFailureResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid multipart form")))
		return
	default:
		file, err := fileHeader.Open()
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		defer file.Close()

		req.Name = fileHeader.Filename
		req.Content = file
	}

	id, err := c.store.Add(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FileIDResponse{ID: id}))
}

// Download returns the raw content of a file
// @Summary Download a file
// @Description Returns the file bytes with their content type. Failures return an empty body.
// @Tags files
// @Produce octet-stream
// @Param fileId path int true "File ID"
// @Param ownerId query int false "Expected owner ID"
// @Success 200 {file} binary
// @Failure 400 "Invalid file ID or unsupported content type"
// @Failure 404 "File not found"
// @Failure 500 "Internal server error"
// @Router /files/{fileId} [get]
func (c *FileController) Download(ctx *gin.Context) {
	fileID := parseID(ctx.Param("fileId"))

	var ownerID *int64
	if raw := ctx.Query("ownerId"); raw != "" {
		id := parseID(raw)
		ownerID = &id
	}

	content, err := c.retriever.Get(ctx.Request.Context(), fileID, ownerID)
	if err != nil {
		status := middleware.StatusFor(err)
		event := c.logger.Warn()
		if status >= http.StatusInternalServerError {
			event = c.logger.Error()
		}
		event.Err(err).Int64("fileID", fileID).Int("status", status).Msg("File download failed")
		ctx.Status(status)
		return
	}

	ctx.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": content.Name}))
	ctx.Data(http.StatusOK, content.ContentType, content.Data)
}

// SetDeleted soft-deletes or restores a file
// @Summary Soft delete or restore a file
// @Description true deletes, false restores, null leaves the file untouched. Repeated calls are no-ops.
// @Tags files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param fileId path int true "File ID"
// @Param request body dto.SetDeletedRequest true "Target state"
// @Success 200 {object} dto.APIResponse{data=dto.FileIDResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /files/{fileId}/deleted [patch]
func (c *FileController) SetDeleted(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrActingUserRequired)
		return
	}

	var req dto.SetDeletedRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.lifecycle.SetDeleted(ctx.Request.Context(), userID, parseID(ctx.Param("fileId")), req.IsDeleted)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FileIDResponse{ID: id}))
}

// ListOwnerFiles returns a handler listing the files of one fixed owner kind
func (c *FileController) ListOwnerFiles(kind models.OwnerKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.list(ctx, string(kind))
	}
}

// ListFiles lists an owner's active files
// @Summary List an owner's files
// @Description Returns the owner's non-deleted files in upload order
// @Tags files
// @Produce json
// @Param ownerKind path string true "Owner kind alias" Enums(User, InformationArticleDetail, NewsDetail)
// @Param ownerId path int true "Owner ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.FileListItem}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /owners/{ownerKind}/{ownerId}/files [get]
func (c *FileController) ListFiles(ctx *gin.Context) {
	c.list(ctx, ctx.Param("ownerKind"))
}

func (c *FileController) list(ctx *gin.Context, kind string) {
	items, err := c.lister.List(ctx.Request.Context(), kind, parseID(ctx.Param("ownerId")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// ListFileTypes lists the registered file types
// @Summary List file types
// @Tags files
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.FileTypeResponse}
// @Failure 500 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /file-types [get]
func (c *FileController) ListFileTypes(ctx *gin.Context) {
	fileTypes, err := c.catalog.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lo.Map(fileTypes, func(ft *models.FileType, _ int) dto.FileTypeResponse {
		return dto.FileTypeResponse{ID: ft.ID, Alias: ft.Alias, Name: ft.Name}
	})))
}

// parseID returns 0 for anything that is not a base-10 int64 so the
// services report it as a missing id
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
