package models

// BaseModel carries a caller-assigned integer key; the store never generates ids.
type BaseModel struct {
	ID int `gorm:"type:int;primaryKey;autoIncrement:false" json:"id"`
}
