package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Character 代表玩家的角色卡
// 除了交易流程之外，角色卡上的欄位都是單純的無條件覆寫，沒有協調問題
type Character struct {
	gorm.Model

	ID          uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	PlayerID    uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Name        string    `gorm:"type:varchar(255);not null"`
	PortraitURL string    `gorm:"type:text;not null;default:''"`

	// 六圍
	Strength     int `gorm:"type:integer;not null;default:10"`
	Dexterity    int `gorm:"type:integer;not null;default:10"`
	Constitution int `gorm:"type:integer;not null;default:10"`
	Intelligence int `gorm:"type:integer;not null;default:10"`
	Wisdom       int `gorm:"type:integer;not null;default:10"`
	Charisma     int `gorm:"type:integer;not null;default:10"`

	HitPoints    int    `gorm:"type:integer;not null;default:0"`
	MaxHitPoints int    `gorm:"type:integer;not null;default:0"`
	Biography    string `gorm:"type:text;not null;default:''"`

	// 外鍵關聯
	Player *Player `gorm:"foreignKey:PlayerID"`
	Skills []Skill
	Spells []Spell
	Notes  []Note
}

func (c *Character) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Skill 代表角色卡上的一項技能
type Skill struct {
	gorm.Model

	ID          uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Rank        int       `gorm:"type:integer;not null;default:0"`
}

func (s *Skill) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Spell 代表角色卡上的一個法術
type Spell struct {
	gorm.Model

	ID          uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Level       int       `gorm:"type:integer;not null;default:0"`
	Prepared    bool      `gorm:"type:boolean;not null;default:false"`
}

func (s *Spell) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Note 代表角色卡上的一則筆記，內容是使用者輸入的自由文字
type Note struct {
	gorm.Model

	ID          uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Body        string    `gorm:"type:text;not null;default:''"`
}

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
