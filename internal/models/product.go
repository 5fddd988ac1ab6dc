package models

import "time"

// Product is a deal offer. Type is one of game, hardware, collectible, accessory.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ExpiryDate  time.Time `json:"expiryDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductInput is the create/update body. ExpiryDate accepts RFC3339 or YYYY-MM-DD.
type ProductInput struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	ExpiryDate  string   `json:"expiryDate"`
}
