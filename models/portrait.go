package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Portrait 代表一次角色立繪的上傳紀錄
// 用來計算每位玩家每小時的上傳次數限制
type Portrait struct {
	gorm.Model

	ID         uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Url        string    `gorm:"type:text;not null;<-:create"`
}

func (p *Portrait) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
