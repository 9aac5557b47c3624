package jwt

import "github.com/golang-jwt/jwt"

// Claims binds an anonymous account to the device identifier it was provisioned for.
// The account identifier doubles as the standard subject claim.
type Claims struct {
	jwt.StandardClaims

	AccountID string `json:"account_id"`
	DeviceID  string `json:"device_id"`
}
