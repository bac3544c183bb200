package packets

import "github.com/Nixie-Tech-LLC/masjid/internal/model"

type LoginResponse struct {
	Token string        `json:"token"`
	User  model.Account `json:"user"`
}
