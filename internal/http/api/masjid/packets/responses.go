package packets

type MessageResponse struct {
	Message string `json:"message"`
}
