package article

import "time"

type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitPiece      Unit = "piece"
	UnitPack       Unit = "pack"
)

var Units = []Unit{UnitKilogram, UnitGram, UnitLiter, UnitMilliliter, UnitPiece, UnitPack}

type Category string

const (
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryBakery     Category = "bakery"
	CategoryBeverages  Category = "beverages"
	CategoryPantry     Category = "pantry"
	CategoryFrozen     Category = "frozen"
	CategoryHousehold  Category = "household"
)

var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryDairy,
	CategoryMeat,
	CategoryBakery,
	CategoryBeverages,
	CategoryPantry,
	CategoryFrozen,
	CategoryHousehold,
}

type Article struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Price       float64   `gorm:"type:numeric(12,2);not null"`
	Unit        Unit      `gorm:"type:varchar(16);not null"`
	Category    Category  `gorm:"type:varchar(32);not null;index"`
	Available   bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

type ListFilter struct {
	Category  *Category
	Available *bool
}

type Input struct {
	Name        string
	Description string
	Price       float64
	Unit        Unit
	Category    Category
	Available   bool
}
