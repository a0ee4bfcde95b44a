package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"tavern/models"
)

// 提供給 atlas 的 schema loader，輸出所有 gorm model 對應的 DDL
func main() {
	stmts, err := gormschema.New("postgres").Load(
		&models.Player{},
		&models.Character{},
		&models.Skill{},
		&models.Spell{},
		&models.Note{},
		&models.Portrait{},
		&models.CatalogWeapon{},
		&models.CatalogArmor{},
		&models.CatalogItem{},
		&models.WeaponOwnership{},
		&models.ArmorOwnership{},
		&models.ItemOwnership{},
		&models.Trade{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
