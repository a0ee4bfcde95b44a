package trade

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tavern/models"
)

func setupDB(t *testing.T) *gorm.DB {
	// 每個測試用獨立的 in-memory 資料庫，cache=shared 讓連線池共用同一份資料
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Player{},
		&models.CatalogWeapon{},
		&models.CatalogArmor{},
		&models.CatalogItem{},
		&models.WeaponOwnership{},
		&models.ArmorOwnership{},
		&models.ItemOwnership{},
		&models.Trade{},
	))
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createPlayer(t *testing.T, db *gorm.DB, name string) *models.Player {
	player := &models.Player{Name: name}
	require.NoError(t, db.Create(player).Error)
	return player
}

func createWeapon(t *testing.T, db *gorm.DB, name string) *models.CatalogWeapon {
	weapon := &models.CatalogWeapon{Name: name, Damage: "1d8", AmmoCapacity: 12}
	require.NoError(t, db.Create(weapon).Error)
	return weapon
}

func grantWeapon(t *testing.T, db *gorm.DB, owner *models.Player, catalog *models.CatalogWeapon, ammo int, engraving string) {
	require.NoError(t, db.Create(&models.WeaponOwnership{
		OwnerID:         owner.ID,
		CatalogWeaponID: catalog.ID,
		RemainingAmmo:   ammo,
		Engraving:       engraving,
	}).Error)
}

func createItem(t *testing.T, db *gorm.DB, name string) *models.CatalogItem {
	item := &models.CatalogItem{Name: name, Weight: 3}
	require.NoError(t, db.Create(item).Error)
	return item
}

func grantItem(t *testing.T, db *gorm.DB, owner *models.Player, catalog *models.CatalogItem, description string) {
	require.NoError(t, db.Create(&models.ItemOwnership{
		OwnerID:       owner.ID,
		CatalogItemID: catalog.ID,
		Description:   description,
	}).Error)
}

func createArmor(t *testing.T, db *gorm.DB, name string) *models.CatalogArmor {
	armor := &models.CatalogArmor{Name: name, ArmorClass: 14}
	require.NoError(t, db.Create(armor).Error)
	return armor
}

func grantArmor(t *testing.T, db *gorm.DB, owner *models.Player, catalog *models.CatalogArmor, wearNotes string) {
	require.NoError(t, db.Create(&models.ArmorOwnership{
		OwnerID:        owner.ID,
		CatalogArmorID: catalog.ID,
		WearNotes:      wearNotes,
	}).Error)
}

// recordingNotifier 記錄所有推送，驗證推送只在成功後發生
type recordingNotifier struct {
	offers     []OfferEvent
	responses  []ResponseEvent
	ownerships [][]OwnershipEvent
}

func (n *recordingNotifier) OfferReceived(_ context.Context, _ uuid.UUID, event OfferEvent) {
	n.offers = append(n.offers, event)
}

func (n *recordingNotifier) TradeResponded(_ context.Context, _ uuid.UUID, event ResponseEvent) {
	n.responses = append(n.responses, event)
}

func (n *recordingNotifier) OwnershipChanged(_ context.Context, events []OwnershipEvent) {
	n.ownerships = append(n.ownerships, events)
}

func weaponEngine(db *gorm.DB, notifier Notifier) *Engine {
	return NewEngine(db, WeaponAdapter{}, WithNotifier(notifier), WithLogger(quietLogger()))
}

func TestOffer_Success(t *testing.T) {
	db := setupDB(t)
	notifier := &recordingNotifier{}
	engine := weaponEngine(db, notifier)

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	bow := createWeapon(t, db, "Shortbow")
	grantWeapon(t, db, alice, sword, 0, "")
	grantWeapon(t, db, bob, bow, 5, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(bow.ID))
	require.NoError(t, err)
	require.NotNil(t, trade)

	// 名稱快照在提出交易當下就固定
	assert.Equal(t, "Alice", trade.SenderName)
	assert.Equal(t, "Longsword", trade.SenderObjectName)
	assert.Equal(t, alice.ID, trade.SenderID)
	assert.Equal(t, bob.ID, trade.ReceiverID)
	require.NotNil(t, trade.ReceiverObjectID)
	assert.Equal(t, bow.ID, *trade.ReceiverObjectID)

	// 推送給接收者
	require.Len(t, notifier.offers, 1)
	assert.Equal(t, trade.ID, notifier.offers[0].TradeID)
	assert.Equal(t, "Alice", notifier.offers[0].SenderName)
	assert.Equal(t, "Longsword", notifier.offers[0].OfferedObjectName)
}

func TestOffer_ValidationOrder(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	carol := createPlayer(t, db, "Carol")
	sword := createWeapon(t, db, "Longsword")
	bow := createWeapon(t, db, "Shortbow")
	axe := createWeapon(t, db, "Handaxe")
	grantWeapon(t, db, alice, sword, 0, "")
	grantWeapon(t, db, bob, bow, 0, "")

	t.Run("receiver engaged wins over everything", func(t *testing.T) {
		_, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(bow.ID))
		require.NoError(t, err)

		// bob 已經在交易中，即使其餘條件也不成立，回報的仍是 trade_already_exists
		_, err = engine.Offer(context.Background(), carol.ID, bob.ID, axe.ID, lo.ToPtr(axe.ID))
		assert.ErrorIs(t, err, ErrTradeAlreadyExists)

		require.NoError(t, engine.Abandon(context.Background(), alice.ID, mustFindTrade(t, db, alice.ID).ID))
	})

	t.Run("same item wins over missing ownership", func(t *testing.T) {
		// carol 沒有 axe，但 trading_same_item 的檢查在持有權之前
		_, err := engine.Offer(context.Background(), carol.ID, bob.ID, axe.ID, lo.ToPtr(axe.ID))
		assert.ErrorIs(t, err, ErrTradingSameItem)
	})

	t.Run("caller already owns requested object", func(t *testing.T) {
		_, err := engine.Offer(context.Background(), alice.ID, bob.ID, bow.ID, lo.ToPtr(sword.ID))
		assert.ErrorIs(t, err, ErrReceiverObjectAlreadyExists)
	})

	t.Run("receiver does not have requested object", func(t *testing.T) {
		_, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(axe.ID))
		assert.ErrorIs(t, err, ErrReceiverDoesNotHaveObject)
	})

	t.Run("gift receiver already has the object", func(t *testing.T) {
		grantWeapon(t, db, bob, sword, 0, "")
		_, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
		assert.ErrorIs(t, err, ErrReceiverAlreadyHasObject)
		require.NoError(t, db.Where("owner_id = ? AND catalog_weapon_id = ?", bob.ID, sword.ID).Delete(&models.WeaponOwnership{}).Error)
	})

	t.Run("sender does not have offered object", func(t *testing.T) {
		_, err := engine.Offer(context.Background(), carol.ID, bob.ID, axe.ID, lo.ToPtr(bow.ID))
		assert.ErrorIs(t, err, ErrSenderDoesNotHaveObject)
	})
}

func mustFindTrade(t *testing.T, db *gorm.DB, senderID uuid.UUID) *models.Trade {
	var trade models.Trade
	require.NoError(t, db.Where("sender_id = ?", senderID).First(&trade).Error)
	return &trade
}

func TestOffer_SenderEngagedDuplicateKey(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	carol := createPlayer(t, db, "Carol")
	sword := createWeapon(t, db, "Longsword")
	axe := createWeapon(t, db, "Handaxe")
	grantWeapon(t, db, alice, sword, 0, "")
	grantWeapon(t, db, alice, axe, 0, "")

	_, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)

	// alice 已是發起者，事前檢查只看接收者，這筆寫入靠 sender_id 的
	// unique index 原子性地擋下來，轉譯成 trade_already_exists
	_, err = engine.Offer(context.Background(), alice.ID, carol.ID, axe.ID, nil)
	assert.ErrorIs(t, err, ErrTradeAlreadyExists)
}

func TestRespond_AcceptTwoSidedSwap(t *testing.T) {
	db := setupDB(t)
	notifier := &recordingNotifier{}
	engine := weaponEngine(db, notifier)

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	bow := createWeapon(t, db, "Shortbow")
	grantWeapon(t, db, alice, sword, 3, "to my dearest")
	grantWeapon(t, db, bob, bow, 7, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(bow.ID))
	require.NoError(t, err)

	resolution, err := engine.Respond(context.Background(), bob.ID, trade.ID, true)
	require.NoError(t, err)
	assert.True(t, resolution.Accepted)

	// 雙方收到確切的交易後狀態，可變欄位原封不動
	require.NotNil(t, resolution.ReceiverReceived)
	assert.Equal(t, sword.ID, resolution.ReceiverReceived.ObjectID)
	assert.Equal(t, bob.ID, resolution.ReceiverReceived.OwnerID)
	assert.Equal(t, 3, resolution.ReceiverReceived.Fields["remainingAmmo"])
	assert.Equal(t, "to my dearest", resolution.ReceiverReceived.Fields["engraving"])
	require.NotNil(t, resolution.SenderReceived)
	assert.Equal(t, bow.ID, resolution.SenderReceived.ObjectID)
	assert.Equal(t, alice.ID, resolution.SenderReceived.OwnerID)
	assert.Equal(t, 7, resolution.SenderReceived.Fields["remainingAmmo"])

	// 不重複、不遺失：每件物品恰好一筆持有紀錄，且各自換了主人
	var count int64
	require.NoError(t, db.Model(&models.WeaponOwnership{}).Where("catalog_weapon_id = ?", sword.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&models.WeaponOwnership{}).Where("catalog_weapon_id = ?", bow.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var swordOwnership models.WeaponOwnership
	require.NoError(t, db.Where("catalog_weapon_id = ?", sword.ID).First(&swordOwnership).Error)
	assert.Equal(t, bob.ID, swordOwnership.OwnerID)
	assert.Equal(t, 3, swordOwnership.RemainingAmmo)
	assert.Equal(t, "to my dearest", swordOwnership.Engraving)

	var bowOwnership models.WeaponOwnership
	require.NoError(t, db.Where("catalog_weapon_id = ?", bow.ID).First(&bowOwnership).Error)
	assert.Equal(t, alice.ID, bowOwnership.OwnerID)

	// 推送：發起者收到結果，觀察者收到每件物品的 remove/add 事件對
	require.Len(t, notifier.responses, 1)
	assert.True(t, notifier.responses[0].Accepted)
	require.Len(t, notifier.ownerships, 1)
	assert.Len(t, notifier.ownerships[0], 4)

	// 交易已是終態，再回應一次視同不存在
	_, err = engine.Respond(context.Background(), bob.ID, trade.ID, true)
	assert.ErrorIs(t, err, ErrTradeDoesNotExist)
}

func TestRespond_Reject(t *testing.T) {
	db := setupDB(t)
	notifier := &recordingNotifier{}
	engine := NewEngine(db, ArmorAdapter{}, WithNotifier(notifier), WithLogger(quietLogger()))

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	plate := createArmor(t, db, "Plate Armor")
	leather := createArmor(t, db, "Leather Armor")
	grantArmor(t, db, alice, plate, "dented pauldron")
	grantArmor(t, db, bob, leather, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, plate.ID, lo.ToPtr(leather.ID))
	require.NoError(t, err)

	resolution, err := engine.Respond(context.Background(), bob.ID, trade.ID, false)
	require.NoError(t, err)
	assert.False(t, resolution.Accepted)
	assert.Nil(t, resolution.ReceiverReceived)
	assert.Nil(t, resolution.SenderReceived)

	// 持有權不變
	var ownership models.ArmorOwnership
	require.NoError(t, db.Where("catalog_armor_id = ?", plate.ID).First(&ownership).Error)
	assert.Equal(t, alice.ID, ownership.OwnerID)
	ownership = models.ArmorOwnership{}
	require.NoError(t, db.Where("catalog_armor_id = ?", leather.ID).First(&ownership).Error)
	assert.Equal(t, bob.ID, ownership.OwnerID)

	// 拒絕也會推送結果給發起者，但沒有持有權變動的廣播
	require.Len(t, notifier.responses, 1)
	assert.False(t, notifier.responses[0].Accepted)
	assert.Empty(t, notifier.ownerships)

	// 交易已是終態
	_, err = engine.Respond(context.Background(), bob.ID, trade.ID, false)
	assert.ErrorIs(t, err, ErrTradeDoesNotExist)
}

func TestRespond_AcceptGift(t *testing.T) {
	db := setupDB(t)
	notifier := &recordingNotifier{}
	engine := NewEngine(db, ItemAdapter{}, WithNotifier(notifier), WithLogger(quietLogger()))

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	rope := createItem(t, db, "Silk Rope")
	grantItem(t, db, alice, rope, "slightly frayed")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, rope.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, trade.ReceiverObjectID)

	resolution, err := engine.Respond(context.Background(), bob.ID, trade.ID, true)
	require.NoError(t, err)
	require.NotNil(t, resolution.ReceiverReceived)
	assert.Equal(t, "slightly frayed", resolution.ReceiverReceived.Fields["description"])
	assert.Nil(t, resolution.SenderReceived)

	var ownership models.ItemOwnership
	require.NoError(t, db.Where("catalog_item_id = ?", rope.ID).First(&ownership).Error)
	assert.Equal(t, bob.ID, ownership.OwnerID)
	assert.Equal(t, "slightly frayed", ownership.Description)

	// 單方面贈與只有一組 remove/add 事件對
	require.Len(t, notifier.ownerships, 1)
	assert.Len(t, notifier.ownerships[0], 2)
}

func TestRespond_NotReceiver(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	carol := createPlayer(t, db, "Carol")
	sword := createWeapon(t, db, "Longsword")
	grantWeapon(t, db, alice, sword, 0, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)

	// 發起者和第三者都不能回應，回報的原因跟交易不存在相同，不洩漏資訊
	_, err = engine.Respond(context.Background(), alice.ID, trade.ID, true)
	assert.ErrorIs(t, err, ErrTradeDoesNotExist)
	_, err = engine.Respond(context.Background(), carol.ID, trade.ID, true)
	assert.ErrorIs(t, err, ErrTradeDoesNotExist)

	// 原本的接收者不受影響
	_, err = engine.Respond(context.Background(), bob.ID, trade.ID, false)
	assert.NoError(t, err)
}

func TestRespond_WrongClass(t *testing.T) {
	db := setupDB(t)
	weapons := weaponEngine(db, NopNotifier{})
	items := NewEngine(db, ItemAdapter{}, WithLogger(quietLogger()))

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	grantWeapon(t, db, alice, sword, 0, "")

	trade, err := weapons.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)

	// 武器的交易不能從一般物品的入口解決
	_, err = items.Respond(context.Background(), bob.ID, trade.ID, true)
	assert.ErrorIs(t, err, ErrTradeDoesNotExist)

	_, err = weapons.Respond(context.Background(), bob.ID, trade.ID, true)
	assert.NoError(t, err)
}

func TestAbandon_Idempotent(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	grantWeapon(t, db, alice, sword, 0, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)

	// 第一次取消刪除資料列，之後的取消都是成功的 no-op
	assert.NoError(t, engine.Abandon(context.Background(), alice.ID, trade.ID))
	var count int64
	require.NoError(t, db.Model(&models.Trade{}).Where("id = ?", trade.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.NoError(t, engine.Abandon(context.Background(), alice.ID, trade.ID))
	assert.NoError(t, engine.Abandon(context.Background(), bob.ID, trade.ID))

	// 從未存在的交易也一樣
	assert.NoError(t, engine.Abandon(context.Background(), alice.ID, uuid.New()))
}

func TestAbandon_OnlyParties(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	carol := createPlayer(t, db, "Carol")
	sword := createWeapon(t, db, "Longsword")
	grantWeapon(t, db, alice, sword, 0, "")

	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)

	// 第三者的取消回報成功但不影響交易
	assert.NoError(t, engine.Abandon(context.Background(), carol.ID, trade.ID))
	var count int64
	require.NoError(t, db.Model(&models.Trade{}).Where("id = ?", trade.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// 接收者也可以取消
	assert.NoError(t, engine.Abandon(context.Background(), bob.ID, trade.ID))
	require.NoError(t, db.Model(&models.Trade{}).Where("id = ?", trade.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAbandonRespondRace(t *testing.T) {
	db := setupDB(t)

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	bow := createWeapon(t, db, "Shortbow")

	t.Run("abandon first", func(t *testing.T) {
		engine := weaponEngine(db, NopNotifier{})
		grantWeapon(t, db, alice, sword, 0, "")
		grantWeapon(t, db, bob, bow, 0, "")

		trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(bow.ID))
		require.NoError(t, err)

		// 取消先提交，之後的接受看到的是不存在的交易，swap 不會發生
		require.NoError(t, engine.Abandon(context.Background(), alice.ID, trade.ID))
		_, err = engine.Respond(context.Background(), bob.ID, trade.ID, true)
		assert.ErrorIs(t, err, ErrTradeDoesNotExist)

		var ownership models.WeaponOwnership
		require.NoError(t, db.Where("catalog_weapon_id = ?", sword.ID).First(&ownership).Error)
		assert.Equal(t, alice.ID, ownership.OwnerID)
	})

	t.Run("respond first", func(t *testing.T) {
		engine := weaponEngine(db, NopNotifier{})

		trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, lo.ToPtr(bow.ID))
		require.NoError(t, err)

		// 接受先提交，swap 恰好發生一次；之後的取消是成功的 no-op
		_, err = engine.Respond(context.Background(), bob.ID, trade.ID, true)
		require.NoError(t, err)
		require.NoError(t, engine.Abandon(context.Background(), alice.ID, trade.ID))

		var ownership models.WeaponOwnership
		require.NoError(t, db.Where("catalog_weapon_id = ?", sword.ID).First(&ownership).Error)
		assert.Equal(t, bob.ID, ownership.OwnerID)
		var count int64
		require.NoError(t, db.Model(&models.WeaponOwnership{}).Where("catalog_weapon_id = ?", sword.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestOfferAfterResolution(t *testing.T) {
	db := setupDB(t)
	engine := weaponEngine(db, NopNotifier{})

	alice := createPlayer(t, db, "Alice")
	bob := createPlayer(t, db, "Bob")
	sword := createWeapon(t, db, "Longsword")
	grantWeapon(t, db, alice, sword, 0, "")

	// 交易解決後雙方都能再次發起新的協商，新的出價是新的資料列
	trade, err := engine.Offer(context.Background(), alice.ID, bob.ID, sword.ID, nil)
	require.NoError(t, err)
	_, err = engine.Respond(context.Background(), bob.ID, trade.ID, true)
	require.NoError(t, err)

	next, err := engine.Offer(context.Background(), bob.ID, alice.ID, sword.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, trade.ID, next.ID)
}
