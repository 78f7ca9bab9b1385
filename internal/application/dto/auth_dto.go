package dto

// TokenRequest body pour POST /api/auth/token (identifiants d'API client).
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse jeton d'accès émis.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // toujours "Bearer"
	ExpiresIn   int    `json:"expires_in"` // secondes
}
