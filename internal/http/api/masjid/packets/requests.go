package packets

import "github.com/Nixie-Tech-LLC/masjid/internal/model"

type UpdatePrayerTimeRequest struct {
	Time     *string `json:"time"`
	IsActive *bool   `json:"isActive"`
}

// EventRequest is the JSON form of an event write. A missing image keeps the
// stored one on update; an empty string clears it.
type EventRequest struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type TransactionRequest struct {
	Title    string                `json:"title" binding:"required"`
	Amount   model.Money           `json:"amount"`
	Type     model.TransactionType `json:"type" binding:"required"`
	Date     string                `json:"date"`
	Category *string               `json:"category"`
}
