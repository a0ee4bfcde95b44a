package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	internalS3 "tavern/adapters/s3"
	"tavern/models"
)

// Upload a character portrait
// (POST /characters/{characterID}/portrait)
func (impl *ServerImpl) PostCharacterPortrait(c *gin.Context) {
	const op = "PostCharacterPortrait"
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	characterID, ok := pathUUID(c, "characterID")
	if !ok {
		return
	}
	character := models.Character{ID: characterID}
	if result := impl.db.First(&character); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "character not found"})
			return
		}
		impl.storageFailure(c, op, result.Error)
		return
	}

	// 檢查是否達到上傳限制
	var uploadedCount int64
	if result := impl.db.Model(&models.Portrait{}).
		Where("uploader_id = ? AND created_at > ?", playerID, time.Now().Add(-1*time.Hour)).
		Count(&uploadedCount); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if impl.config.S3.RateLimitPerHour > 0 && uploadedCount >= impl.config.S3.RateLimitPerHour {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "upload rate limit reached"})
		return
	}

	// 限制圖片
	// 	1. 小於5MB
	// 	2. MIME類型為不包含腳本的圖片檔案
	body := internalS3.NewMaxSizeReader(c.Request.Body, 5<<20)
	file, err := io.ReadAll(body)
	if errors.As(err, &internalS3.ErrReachLimitType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		impl.storageFailure(c, op, err)
		return
	}
	mimeType := http.DetectContentType(file)
	secure, ext := internalS3.CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid image type: %s", mimeType)})
		return
	}

	// 透過S3 API儲存圖片
	url, err := impl.s3Operator.UploadFileToS3(c.Request.Context(), uuid.New().String()+"."+ext, mimeType, file)
	if err != nil {
		impl.storageFailure(c, op, err)
		return
	}

	// 在DB紀錄上傳紀錄並更新角色立繪
	portrait := models.Portrait{
		UploaderID: playerID,
		Url:        url,
	}
	if result := impl.db.Create(&portrait); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	if result := impl.db.Model(&character).Update("portrait_url", url); result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}

	c.Header("Location", url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
