package models

// SessionClaims are the claims read from a verified session token.
// Email and name claims are optional and come from the provider's session
// token template.
type SessionClaims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
	Iss       string `json:"iss"`
	Azp       string `json:"azp"`
}
