package packets

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes only the fields that are present. An empty
// password leaves the stored one unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}
