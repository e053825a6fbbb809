package auth

import (
	"time"

	"taller-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTCustomClaims struct {
	UserID    uint              `json:"user_id"`
	Correo    string            `json:"correo"`
	Rol       models.RolUsuario `json:"rol"`
	EmpresaID uint              `json:"empresa_id"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.Usuario) (string, error) {
	claims := &JWTCustomClaims{
		UserID:    user.ID,
		Correo:    user.Correo,
		Rol:       user.Rol,
		EmpresaID: user.EmpresaID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 día
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
