package models

// Ingredient is catalog reference data loaded in bulk
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:256;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:50;not null" json:"measurement_unit"`
}

// Tag labels recipes. Color is a #RRGGBB hex string.
type Tag struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color *string `gorm:"size:7;uniqueIndex" json:"color"`
	Slug  *string `gorm:"size:200;uniqueIndex" json:"slug"`
}
