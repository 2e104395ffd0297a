package models

import "time"

type Pixel struct {
	ID            string      `json:"id"`
	Label         string      `json:"label"`
	PixelID       string      `json:"pixelId"`
	IsDefault     bool        `json:"isDefault"`
	DefaultEvents []MetaEvent `json:"defaultEvents"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
