package models

// TokenTypeBearer is the only token type issued
const TokenTypeBearer = "bearer"

// LoginRequest represents the credentials of an OAuth2 password grant
type LoginRequest struct {
	Username string
	Password string
}

// TokenResponse is returned after registration and login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse wraps an access token
func NewTokenResponse(token string) *TokenResponse {
	return &TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}
}
