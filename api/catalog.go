package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tavern/models"
	"tavern/trade"
)

// List the item templates of a class
// (GET /catalog/{class})
func (impl *ServerImpl) GetCatalog(c *gin.Context) {
	const op = "GetCatalog"
	class, ok := trade.ParseClass(c.Param("class"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown item class"})
		return
	}
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}

	var result *gorm.DB
	var items any
	switch class {
	case trade.ClassWeapon:
		var weapons []models.CatalogWeapon
		result = impl.db.Find(&weapons)
		items = weapons
	case trade.ClassArmor:
		var armors []models.CatalogArmor
		result = impl.db.Find(&armors)
		items = armors
	case trade.ClassItem:
		var catalogItems []models.CatalogItem
		result = impl.db.Find(&catalogItems)
		items = catalogItems
	}
	if result.Error != nil {
		impl.storageFailure(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Grant an item to a player (game-master acquisition flow)
// (POST /inventory/{class}/grant)
func (impl *ServerImpl) PostInventoryGrant(c *gin.Context) {
	const op = "PostInventoryGrant"
	class, ok := trade.ParseClass(c.Param("class"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown item class"})
		return
	}
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	var request struct {
		PlayerID uuid.UUID `json:"playerId" binding:"required"`
		ObjectID uuid.UUID `json:"objectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := impl.grantObject(class, request.PlayerID, request.ObjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "object not found"})
		return
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": "receiver_already_has_object"})
		return
	}
	if err != nil {
		impl.storageFailure(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{})
}

// grantObject 建立一筆持有紀錄
// 同一位玩家不能重複持有同一個圖鑑物品，由 unique constraint 保證
func (impl *ServerImpl) grantObject(class trade.Class, playerID, objectID uuid.UUID) error {
	switch class {
	case trade.ClassWeapon:
		catalog := models.CatalogWeapon{ID: objectID}
		if result := impl.db.First(&catalog); result.Error != nil {
			return result.Error
		}
		return impl.db.Create(&models.WeaponOwnership{
			OwnerID:         playerID,
			CatalogWeaponID: objectID,
			RemainingAmmo:   catalog.AmmoCapacity,
		}).Error
	case trade.ClassArmor:
		if result := impl.db.First(&models.CatalogArmor{ID: objectID}); result.Error != nil {
			return result.Error
		}
		return impl.db.Create(&models.ArmorOwnership{
			OwnerID:        playerID,
			CatalogArmorID: objectID,
		}).Error
	default:
		if result := impl.db.First(&models.CatalogItem{ID: objectID}); result.Error != nil {
			return result.Error
		}
		return impl.db.Create(&models.ItemOwnership{
			OwnerID:       playerID,
			CatalogItemID: objectID,
		}).Error
	}
}
