package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/util"
)

const attachmentFolder = "notification-attachments"

// uploadAttachment stores a file for use in a notification's rich content
// and returns its public URL.
func (server *Server) uploadAttachment(c *gin.Context) {
	if server.fileStore == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse(ErrAttachmentStoreNotReady))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(fmt.Errorf("failed to read file: %w", err)))
		return
	}

	fileName := util.GenerateAttachmentSlug(fileHeader.Filename)
	uploadedFileURL, err := server.fileStore.UploadFile(c, fileBytes, fileName, attachmentFolder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusCreated, notification.Attachment{
		Name: fileHeader.Filename,
		URL:  uploadedFileURL,
	})
}

// deleteAttachment removes an uploaded file that is no longer referenced by
// any notification. The id is the slug returned at upload time.
func (server *Server) deleteAttachment(c *gin.Context) {
	if server.fileStore == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse(ErrAttachmentStoreNotReady))
		return
	}

	if err := server.fileStore.DeleteFile(c, c.Param("id"), attachmentFolder); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.Status(http.StatusNoContent)
}
