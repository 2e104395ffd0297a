package models

import "time"

const DefaultRedirectText = "Redirecionando..."

// Appearance is the global look of the redirect box on every WhatsApp page.
type Appearance struct {
	RedirectText    string    `json:"redirectText"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	BorderEnabled   bool      `json:"borderEnabled"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
