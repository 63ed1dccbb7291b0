package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

func fileService() *services.FileService {
	return services.NewFileService(config.GetDB(), services.GetS3Service())
}

// UploadFile handles POST /api/files (multipart: file, related_id, file_type).
// related_id must name an existing order, batch or fitting.
func UploadFile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, utils.BadRequest("MISSING_FILE", "A file must be sent in the 'file' form field"))
		return
	}

	relatedID := c.PostForm("related_id")
	if relatedID == "" {
		respondError(c, utils.BadRequest("VALIDATION_ERROR", "Invalid request data").WithDetail("related_id is required"))
		return
	}

	file, err := fileService().Upload(c.Request.Context(), fileHeader, services.UploadInput{
		RelatedID:  relatedID,
		FileType:   c.PostForm("file_type"),
		UploadedBy: userID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"file":    file,
	})
}

// GetFile handles GET /api/files/:file_id - returns metadata with a presigned download URL
func GetFile(c *gin.Context) {
	file, err := fileService().Get(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    file,
	})
}
