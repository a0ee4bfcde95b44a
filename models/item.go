package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogItem 代表一般物品圖鑑中的一個模板，不可變
type CatalogItem struct {
	gorm.Model

	ID     uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	Name   string    `gorm:"type:varchar(255);not null;<-:create"`
	Weight int       `gorm:"type:integer;not null;default:0;<-:create"`
}

func (i *CatalogItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ItemOwnership 代表某位玩家持有的一件一般物品實體
type ItemOwnership struct {
	gorm.Model

	ID            uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	OwnerID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_item_ownership,where:deleted_at IS NULL;not null"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_item_ownership,where:deleted_at IS NULL;not null;<-:create"`

	// 可變欄位，隨持有權轉移
	Description string `gorm:"type:text;not null;default:''"`

	// 外鍵關聯
	Owner       *Player      `gorm:"foreignKey:OwnerID"`
	CatalogItem *CatalogItem `gorm:"foreignKey:CatalogItemID"`
}

func (i *ItemOwnership) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
