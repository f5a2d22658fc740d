package model

import "time"

type Stock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"symbol"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Sector    string    `gorm:"type:varchar(128)" json:"sector"`
	Industry  string    `gorm:"type:varchar(255)" json:"industry"`
	LogoURL   *string   `gorm:"column:logo_url" json:"logoUrl"`
	MarketCap float64   `json:"marketCap"`
	PERatio   float64   `gorm:"column:pe_ratio" json:"peRatio"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Stock) TableName() string {
	return "stocks"
}
