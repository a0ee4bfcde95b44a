package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player 代表桌遊團中的玩家（包含遊戲主持人）
// 只包含基本的玩家資訊，角色資料記錄在 Character
type Player struct {
	gorm.Model

	ID   uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	Name string    `gorm:"type:varchar(255);uniqueIndex:idx_player_name,where:deleted_at IS NULL;not null"`
}

func (p *Player) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
