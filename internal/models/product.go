package models

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Product is an affiliate link served at /t/{slug}.
type Product struct {
	ID            string      `json:"id"`
	Slug          string      `json:"slug"`
	Title         string      `json:"title"`
	AffiliateURL  string      `json:"affiliateUrl"`
	PixelConfigID string      `json:"pixelConfigId"`
	Events        []MetaEvent `json:"events"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (p Product) IsActive() bool {
	return p.Status == StatusActive
}
