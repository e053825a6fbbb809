package inventario

import (
	"fmt"
	"strings"

	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateMarcaRequest struct {
	Nombre string `json:"nombre"`
}

type MarcaResponse struct {
	ID        uint   `json:"id"`
	EmpresaID uint   `json:"empresa_id"`
	Nombre    string `json:"nombre"`
	CreatedAt string `json:"created_at"`
}

// POST /api/marcas
func CreateMarcaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMarcaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if strings.TrimSpace(body.Nombre) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		marca := models.Marca{
			EmpresaID: empresaID,
			Nombre:    strings.TrimSpace(body.Nombre),
		}

		if err := database.DB.Create(&marca).Error; err != nil {
			// El nombre de marca es único por empresa; la violación llega
			// con código de conflicto y se traduce a un mensaje claro.
			return database.TraducirError(err, "No se pudo guardar la marca")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &marca.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "marca",
				EntityID:    marca.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Marca agregada: %s", marca.Nombre),
				Before:      nil,
				After:       marca,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(MarcaResponse{
			ID:        marca.ID,
			EmpresaID: marca.EmpresaID,
			Nombre:    marca.Nombre,
			CreatedAt: marca.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

// GET /api/marcas
func ListMarcasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		var marcas []models.Marca
		if err := database.DB.
			Where("empresa_id = ?", empresaID).
			Order("nombre asc").
			Find(&marcas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las marcas")
		}

		resp := make([]MarcaResponse, 0, len(marcas))
		for _, m := range marcas {
			resp = append(resp, MarcaResponse{
				ID:        m.ID,
				EmpresaID: m.EmpresaID,
				Nombre:    m.Nombre,
				CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/marcas/:id
func DeleteMarcaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		idStr := c.Params("id")
		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID de marca inválido")
		}

		var marca models.Marca
		if err := database.DB.
			Where("id = ? AND empresa_id = ?", id, empresaID).
			First(&marca).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Marca no encontrada")
		}

		var enUso int64
		database.DB.Model(&models.Producto{}).
			Where("marca_id = ?", marca.ID).
			Count(&enUso)
		if enUso > 0 {
			return fiber.NewError(fiber.StatusConflict, "La marca tiene productos asociados y no se puede eliminar")
		}

		if err := database.DB.Delete(&marca).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la marca")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &marca.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "marca",
				EntityID:    marca.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Marca eliminada: %s", marca.Nombre),
				Before:      marca,
				After:       marca,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Marca eliminada"})
	}
}
