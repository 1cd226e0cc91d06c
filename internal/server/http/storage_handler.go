package http

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/orgchat/internal/common"
	"github.com/dmitrijs2005/orgchat/internal/server/models"
	"github.com/gin-gonic/gin"
)

type StorageHandler struct {
	storage StorageAPI
}

func NewStorageHandler(s StorageAPI) *StorageHandler {
	return &StorageHandler{storage: s}
}

type uploadResponse struct {
	File *models.File `json:"file"`
	URL  string       `json:"url"`
}

type filesResponse struct {
	Files []*models.File `json:"files"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// Upload reads the multipart field "file".
func (h *StorageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: multipart field \"file\" is required", common.ErrorValidation))
		return
	}

	body, err := fh.Open()
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer body.Close()

	f, url, err := h.storage.Upload(c.Request.Context(), currentUserID(c), fh.Filename,
		fh.Header.Get("Content-Type"), fh.Size, body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, uploadResponse{File: f, URL: url})
}

func (h *StorageHandler) List(c *gin.Context) {
	files, err := h.storage.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, filesResponse{Files: files})
}

func (h *StorageHandler) Download(c *gin.Context) {
	url, err := h.storage.DownloadURL(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, urlResponse{URL: url})
}

func (h *StorageHandler) Delete(c *gin.Context) {
	if err := h.storage.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
