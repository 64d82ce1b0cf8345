package entity

import "time"

// Taxpayer is a registered user of the fiscal assistant.
type Taxpayer struct {
	UUID       string    `json:"uuid" bson:"uuid"`
	Name       string    `json:"name" bson:"name"`
	Phone      string    `json:"phone" bson:"phone"`
	Email      string    `json:"email" bson:"email"`
	Region     string    `json:"region" bson:"region"`
	Sector     string    `json:"sector" bson:"sector"`
	TaxID      string    `json:"tax_id" bson:"tax_id"`
	TelegramId int64     `json:"telegram_id" bson:"telegram_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
