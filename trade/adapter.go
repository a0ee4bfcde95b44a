package trade

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Class 是可交易物品的類別
type Class string

const (
	ClassWeapon Class = "weapon"
	ClassArmor  Class = "armor"
	ClassItem   Class = "item"
)

// ParseClass 解析路徑參數中的物品類別
func ParseClass(s string) (Class, bool) {
	switch Class(s) {
	case ClassWeapon, ClassArmor, ClassItem:
		return Class(s), true
	}
	return "", false
}

// Object 是一件持有物在某個時間點的快照
// Fields 攜帶該類別特有的可變欄位（剩餘彈藥、自由文字描述等），
// 交易成立後回傳的快照必須包含轉移前就存在的欄位值，讓雙方收到確切的交易後狀態
type Object struct {
	ObjectID uuid.UUID      `json:"objectId"`
	OwnerID  uuid.UUID      `json:"ownerId"`
	Name     string         `json:"name"`
	Fields   map[string]any `json:"fields"`
}

// OwnershipAdapter 是物品類別的能力集
// 三個類別（武器、防具、一般物品）的協商邏輯完全相同，
// 只差在持有權資料存在哪張表；Engine 以這個介面參數化，每個類別各建一個實例
//
// 所有方法都在呼叫端提供的 *gorm.DB 上操作，
// 讓 Engine 能把多個步驟放進同一個交易（swap 的原子性依賴這點）
type OwnershipAdapter interface {
	// Class 回傳這個 adapter 服務的物品類別
	Class() Class
	// Owns 檢查 ownerID 是否持有 objectID 對應的圖鑑物品
	Owns(tx *gorm.DB, ownerID, objectID uuid.UUID) (bool, error)
	// FindOwnership 取得持有紀錄的快照；找不到時回傳 gorm.ErrRecordNotFound
	FindOwnership(tx *gorm.DB, ownerID, objectID uuid.UUID) (*Object, error)
	// ReassignOwner 把 (ownerID, objectID) 的持有紀錄 re-key 給 newOwnerID，
	// 回傳轉移後的快照；持有紀錄不存在時回傳 gorm.ErrRecordNotFound。
	// 只改寫 owner_id 欄位，可變欄位原封不動
	ReassignOwner(tx *gorm.DB, ownerID, objectID, newOwnerID uuid.UUID) (*Object, error)
	// ObjectName 取得圖鑑物品的顯示名稱
	ObjectName(tx *gorm.DB, objectID uuid.UUID) (string, error)
}
