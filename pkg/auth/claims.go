package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Cedula     string
	Nombre     string
	EsVendedor bool
	IDVendedor *int64
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Cedula     string `json:"cedula"`
	Nombre     string `json:"nombre"`
	EsVendedor bool   `json:"es_vendedor"`
	IDVendedor *int64 `json:"id_vendedor,omitempty"`
	jwt.RegisteredClaims
}
