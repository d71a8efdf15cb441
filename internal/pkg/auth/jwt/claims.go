package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for EcoTrade.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying and authorizing users.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the account identifier (the hex form of the user's Mongo object id).
	ID string `json:"id"`

	// Name is the user's display name, carried so the gateway can enrich
	// presence and typing events without a store lookup.
	Name string `json:"name"`

	// Role is the account role ("user" or "admin") used for admin-only routes.
	Role string `json:"role"`
}
