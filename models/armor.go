package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogArmor 代表防具圖鑑中的一個模板，不可變
type CatalogArmor struct {
	gorm.Model

	ID         uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	Name       string    `gorm:"type:varchar(255);not null;<-:create"`
	ArmorClass int       `gorm:"type:integer;not null;<-:create"`
}

func (a *CatalogArmor) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArmorOwnership 代表某位玩家持有的一件防具實體
// 轉移規則同 WeaponOwnership：re-key owner_id，可變欄位跟著走
type ArmorOwnership struct {
	gorm.Model

	ID             uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	OwnerID        uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_armor_ownership,where:deleted_at IS NULL;not null"`
	CatalogArmorID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_armor_ownership,where:deleted_at IS NULL;not null;<-:create"`

	// 可變欄位，隨持有權轉移
	WearNotes string `gorm:"type:text;not null;default:''"`

	// 外鍵關聯
	Owner        *Player       `gorm:"foreignKey:OwnerID"`
	CatalogArmor *CatalogArmor `gorm:"foreignKey:CatalogArmorID"`
}

func (a *ArmorOwnership) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
