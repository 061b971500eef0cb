package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad del actor del libro.
// Un token de sistema (System=true) no lleva clinic_id.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	ClinicID    string   `json:"clinic_id,omitempty"`
	Role        string   `json:"role"` // "admin" | "bodeguero" | "profesional" | "system"
	Permissions []string `json:"permissions,omitempty"`
	System      bool     `json:"system,omitempty"`
}

// Identity datos del actor que viajan en el token.
type Identity struct {
	UserID      string
	ClinicID    string
	Role        string
	Permissions []string
	System      bool
}

// Generate genera un token JWT firmado con la identidad del actor.
func Generate(secret, issuer string, id Identity, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:      id.UserID,
		ClinicID:    id.ClinicID,
		Role:        id.Role,
		Permissions: id.Permissions,
		System:      id.System,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return Identity{}, fmt.Errorf("claims inválidos: user_id vacío")
	}
	if !claims.System && claims.ClinicID == "" {
		return Identity{}, fmt.Errorf("claims inválidos: clinic_id vacío")
	}
	return Identity{
		UserID:      claims.UserID,
		ClinicID:    claims.ClinicID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		System:      claims.System,
	}, nil
}
