package auth

import (
	"strings"

	"taller-backend/internal/config"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterEmpresaRequest struct {
	EmpresaNombre    string `json:"empresa_nombre"`
	EmpresaDireccion string `json:"empresa_direccion"`
	EmpresaTelefono  string `json:"empresa_telefono"`
	Nombre           string `json:"nombre"`
	Correo           string `json:"correo"`
	Password         string `json:"password"`
}

type LoginRequest struct {
	Correo   string `json:"correo"`
	Password string `json:"password"`
}

// POST /api/auth/register-empresa
// Alta inicial: crea la empresa y su primer usuario administrador en un paso.
func RegisterEmpresaHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterEmpresaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Correo = strings.TrimSpace(strings.ToLower(body.Correo))
		body.EmpresaNombre = strings.TrimSpace(body.EmpresaNombre)

		if body.EmpresaNombre == "" || body.Nombre == "" || body.Correo == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre de empresa, nombre, correo y contraseña son obligatorios")
		}

		var count int64
		database.DB.Model(&models.Empresa{}).
			Where("nombre = ?", body.EmpresaNombre).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ya existe una empresa con ese nombre")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
		}

		empresa := models.Empresa{
			Nombre:    body.EmpresaNombre,
			Direccion: body.EmpresaDireccion,
			Telefono:  body.EmpresaTelefono,
		}
		if err := database.DB.Create(&empresa).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la empresa")
		}

		user := models.Usuario{
			EmpresaID:    empresa.ID,
			Nombre:       body.Nombre,
			Correo:       body.Correo,
			PasswordHash: string(hash),
			Rol:          models.RolAdmin,
			Activo:       true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"empresa_id": empresa.ID,
			"user_id":    user.ID,
			"correo":     user.Correo,
			"rol":        user.Rol,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Correo = strings.TrimSpace(strings.ToLower(body.Correo))

		var user models.Usuario
		if err := database.DB.Where("correo = ?", body.Correo).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Correo o contraseña incorrectos")
		}

		if !user.Activo {
			return fiber.NewError(fiber.StatusUnauthorized, "El usuario está dado de baja")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Correo o contraseña incorrectos")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":         user.ID,
				"nombre":     user.Nombre,
				"correo":     user.Correo,
				"rol":        user.Rol,
				"empresa_id": user.EmpresaID,
			},
		})
	}
}

// GET /api/auth/me
// Introspección de sesión: identidad del usuario más el perfil de su empresa.
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDVal := c.Locals(CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Sesión inválida")
		}

		var user models.Usuario
		if err := database.DB.Preload("Empresa").First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario no encontrado")
		}

		return c.JSON(fiber.Map{
			"id":     user.ID,
			"nombre": user.Nombre,
			"correo": user.Correo,
			"rol":    user.Rol,
			"empresa": fiber.Map{
				"id":        user.Empresa.ID,
				"nombre":    user.Empresa.Nombre,
				"direccion": user.Empresa.Direccion,
				"telefono":  user.Empresa.Telefono,
				"logo_path": user.Empresa.LogoPath,
			},
		})
	}
}
