package controller

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/utils"
)

// UploadTaskImage stores a progress or rejection photo and returns its URL.
// The caller passes that URL back as image_url on the task update; the
// engine never touches object storage itself.
func (ctrl *Controller) UploadTaskImage(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.JSON400(c, "An image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to open upload: %v", err)
		utils.JSON500(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	objectName := fmt.Sprintf("%s/%s%s",
		time.Now().UTC().Format("2006/01"),
		uuid.New().String(),
		filepath.Ext(fileHeader.Filename),
	)

	url, err := ctrl.Infra.Minio.UploadImage(ctx, objectName, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to store image: %v", err)
		utils.JSON500(c, "Failed to store image")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Upload] Stored task image %s", objectName)
	utils.JSON200(c, gin.H{"image_url": url})
}
