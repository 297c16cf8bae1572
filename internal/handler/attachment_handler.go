package handler

import (
	"fmt"
	"net/http"

	"reqtrack/internal/middleware"
	"reqtrack/internal/service"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AttachmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(middleware.RequireAuth())
	{
		requests.POST("/:id/attachments", h.UploadAttachment)
		requests.GET("/:id/attachments", h.ListAttachments)
	}

	attachments := router.Group("/api/attachments")
	attachments.Use(middleware.RequireAuth())
	{
		attachments.GET("/:id/download", h.DownloadAttachment)
		attachments.DELETE("/:id", h.DeleteAttachment)
	}
}

// UploadAttachment handles POST /api/requests/:id/attachments
// @Summary      Upload an attachment
// @Description  Stores a file against a request. Uploads do not touch the request's audit log or updated_at.
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Request ID"
// @Param        file  formData  file    true  "File to upload"
// @Success      201   {object}  response.Response{data=service.AttachmentResponse}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /api/requests/{id}/attachments [post]
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file in multipart form"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unable to read uploaded file"))
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.attachmentService.Upload(c.Request.Context(), actor, c.Param("id"), fileHeader.Filename, contentType, fileHeader.Size, src)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListAttachments handles GET /api/requests/:id/attachments
// @Summary      List attachments on a request
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.AttachmentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/attachments [get]
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	result, err := h.attachmentService.ListByRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DownloadAttachment handles GET /api/attachments/:id/download
// @Summary      Download an attachment
// @Tags         attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id  path  string  true  "Attachment ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /api/attachments/{id}/download [get]
func (h *AttachmentHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	meta, rc, err := h.attachmentService.Open(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", meta.FileName),
	}
	c.DataFromReader(http.StatusOK, meta.SizeBytes, contentType, rc, extraHeaders)
}

// DeleteAttachment handles DELETE /api/attachments/:id
// @Summary      Delete an attachment
// @Description  Removes an attachment row and its stored payload. Only the uploader or an admin may delete.
// @Tags         attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Attachment ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/attachments/{id} [delete]
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
