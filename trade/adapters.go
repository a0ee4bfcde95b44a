package trade

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tavern/models"
)

// WeaponAdapter 實作武器類別的 OwnershipAdapter
type WeaponAdapter struct{}

func (WeaponAdapter) Class() Class { return ClassWeapon }

func (WeaponAdapter) Owns(tx *gorm.DB, ownerID, objectID uuid.UUID) (bool, error) {
	var count int64
	result := tx.Model(&models.WeaponOwnership{}).
		Where("owner_id = ? AND catalog_weapon_id = ?", ownerID, objectID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("fail to check weapon ownership, err=%w", result.Error)
	}
	return count > 0, nil
}

func (WeaponAdapter) FindOwnership(tx *gorm.DB, ownerID, objectID uuid.UUID) (*Object, error) {
	var ownership models.WeaponOwnership
	result := tx.Preload("CatalogWeapon").
		Where("owner_id = ? AND catalog_weapon_id = ?", ownerID, objectID).
		First(&ownership)
	if result.Error != nil {
		return nil, result.Error
	}
	return weaponObject(&ownership), nil
}

func (a WeaponAdapter) ReassignOwner(tx *gorm.DB, ownerID, objectID, newOwnerID uuid.UUID) (*Object, error) {
	result := tx.Model(&models.WeaponOwnership{}).
		Where("owner_id = ? AND catalog_weapon_id = ?", ownerID, objectID).
		Update("owner_id", newOwnerID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return a.FindOwnership(tx, newOwnerID, objectID)
}

func (WeaponAdapter) ObjectName(tx *gorm.DB, objectID uuid.UUID) (string, error) {
	catalog := models.CatalogWeapon{ID: objectID}
	if result := tx.First(&catalog); result.Error != nil {
		return "", result.Error
	}
	return catalog.Name, nil
}

func weaponObject(ownership *models.WeaponOwnership) *Object {
	name := ""
	if ownership.CatalogWeapon != nil {
		name = ownership.CatalogWeapon.Name
	}
	return &Object{
		ObjectID: ownership.CatalogWeaponID,
		OwnerID:  ownership.OwnerID,
		Name:     name,
		Fields: map[string]any{
			"remainingAmmo": ownership.RemainingAmmo,
			"engraving":     ownership.Engraving,
		},
	}
}

// ArmorAdapter 實作防具類別的 OwnershipAdapter
type ArmorAdapter struct{}

func (ArmorAdapter) Class() Class { return ClassArmor }

func (ArmorAdapter) Owns(tx *gorm.DB, ownerID, objectID uuid.UUID) (bool, error) {
	var count int64
	result := tx.Model(&models.ArmorOwnership{}).
		Where("owner_id = ? AND catalog_armor_id = ?", ownerID, objectID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("fail to check armor ownership, err=%w", result.Error)
	}
	return count > 0, nil
}

func (ArmorAdapter) FindOwnership(tx *gorm.DB, ownerID, objectID uuid.UUID) (*Object, error) {
	var ownership models.ArmorOwnership
	result := tx.Preload("CatalogArmor").
		Where("owner_id = ? AND catalog_armor_id = ?", ownerID, objectID).
		First(&ownership)
	if result.Error != nil {
		return nil, result.Error
	}
	return armorObject(&ownership), nil
}

func (a ArmorAdapter) ReassignOwner(tx *gorm.DB, ownerID, objectID, newOwnerID uuid.UUID) (*Object, error) {
	result := tx.Model(&models.ArmorOwnership{}).
		Where("owner_id = ? AND catalog_armor_id = ?", ownerID, objectID).
		Update("owner_id", newOwnerID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return a.FindOwnership(tx, newOwnerID, objectID)
}

func (ArmorAdapter) ObjectName(tx *gorm.DB, objectID uuid.UUID) (string, error) {
	catalog := models.CatalogArmor{ID: objectID}
	if result := tx.First(&catalog); result.Error != nil {
		return "", result.Error
	}
	return catalog.Name, nil
}

func armorObject(ownership *models.ArmorOwnership) *Object {
	name := ""
	if ownership.CatalogArmor != nil {
		name = ownership.CatalogArmor.Name
	}
	return &Object{
		ObjectID: ownership.CatalogArmorID,
		OwnerID:  ownership.OwnerID,
		Name:     name,
		Fields: map[string]any{
			"wearNotes": ownership.WearNotes,
		},
	}
}

// ItemAdapter 實作一般物品類別的 OwnershipAdapter
type ItemAdapter struct{}

func (ItemAdapter) Class() Class { return ClassItem }

func (ItemAdapter) Owns(tx *gorm.DB, ownerID, objectID uuid.UUID) (bool, error) {
	var count int64
	result := tx.Model(&models.ItemOwnership{}).
		Where("owner_id = ? AND catalog_item_id = ?", ownerID, objectID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("fail to check item ownership, err=%w", result.Error)
	}
	return count > 0, nil
}

func (ItemAdapter) FindOwnership(tx *gorm.DB, ownerID, objectID uuid.UUID) (*Object, error) {
	var ownership models.ItemOwnership
	result := tx.Preload("CatalogItem").
		Where("owner_id = ? AND catalog_item_id = ?", ownerID, objectID).
		First(&ownership)
	if result.Error != nil {
		return nil, result.Error
	}
	return itemObject(&ownership), nil
}

func (a ItemAdapter) ReassignOwner(tx *gorm.DB, ownerID, objectID, newOwnerID uuid.UUID) (*Object, error) {
	result := tx.Model(&models.ItemOwnership{}).
		Where("owner_id = ? AND catalog_item_id = ?", ownerID, objectID).
		Update("owner_id", newOwnerID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return a.FindOwnership(tx, newOwnerID, objectID)
}

func (ItemAdapter) ObjectName(tx *gorm.DB, objectID uuid.UUID) (string, error) {
	catalog := models.CatalogItem{ID: objectID}
	if result := tx.First(&catalog); result.Error != nil {
		return "", result.Error
	}
	return catalog.Name, nil
}

func itemObject(ownership *models.ItemOwnership) *Object {
	name := ""
	if ownership.CatalogItem != nil {
		name = ownership.CatalogItem.Name
	}
	return &Object{
		ObjectID: ownership.CatalogItemID,
		OwnerID:  ownership.OwnerID,
		Name:     name,
		Fields: map[string]any{
			"description": ownership.Description,
		},
	}
}
