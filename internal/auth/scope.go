package auth

import (
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// EmpresaIDFromCtx lee la empresa (inquilino) de los claims del token. Todas
// las consultas de todos los módulos filtran por este valor; el cuerpo de la
// petición nunca decide la empresa.
func EmpresaIDFromCtx(c *fiber.Ctx) (uint, error) {
	val := c.Locals(CtxEmpresaIDKey)
	empresaID, ok := val.(uint)
	if !ok || empresaID == 0 {
		return 0, fiber.NewError(fiber.StatusForbidden, "No se pudo determinar la empresa")
	}
	return empresaID, nil
}

// UserInfoFromCtx devuelve el id y el nombre del usuario autenticado, para
// las bitácoras de auditoría.
func UserInfoFromCtx(c *fiber.Ctx) (uint, string, error) {
	val := c.Locals(CtxUserIDKey)
	userID, ok := val.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "No se pudo determinar el usuario")
	}

	var user models.Usuario
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}

	return userID, user.Nombre, nil
}
