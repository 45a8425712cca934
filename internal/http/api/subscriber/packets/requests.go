package packets

// body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// body for re-registering a device's push address
type ResyncRequest struct {
	PushToken string `json:"push_token" binding:"required"`
}
