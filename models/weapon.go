package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogWeapon 代表武器圖鑑中的一個模板
// 圖鑑資料是不可變的，交易只會引用它的 ID，不會修改它
type CatalogWeapon struct {
	gorm.Model

	ID           uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	Name         string    `gorm:"type:varchar(255);not null;<-:create"`
	Damage       string    `gorm:"type:varchar(32);not null;<-:create"`
	AmmoCapacity int       `gorm:"type:integer;not null;default:0;<-:create"`
}

func (w *CatalogWeapon) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WeaponOwnership 代表某位玩家持有的一件武器實體
// (owner_id, catalog_weapon_id) 在未刪除的資料列中必須唯一；
// 交易成立時只改寫 owner_id（re-key），可變欄位（剩餘彈藥、刻字）必須原封不動地跟著走
type WeaponOwnership struct {
	gorm.Model

	ID              uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	OwnerID         uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_weapon_ownership,where:deleted_at IS NULL;not null"`
	CatalogWeaponID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_weapon_ownership,where:deleted_at IS NULL;not null;<-:create"`

	// 可變欄位，隨持有權轉移
	RemainingAmmo int    `gorm:"type:integer;not null;default:0"`
	Engraving     string `gorm:"type:text;not null;default:''"`

	// 外鍵關聯
	Owner         *Player        `gorm:"foreignKey:OwnerID"`
	CatalogWeapon *CatalogWeapon `gorm:"foreignKey:CatalogWeaponID"`
}

func (w *WeaponOwnership) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
