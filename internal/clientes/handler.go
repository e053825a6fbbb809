package clientes

import (
	"fmt"
	"strings"

	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateClienteRequest struct {
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion string  `json:"direccion"`
}

type UpdateClienteRequest struct {
	Nombre    *string `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion *string `json:"direccion"`
}

type ClienteResponse struct {
	ID        uint    `json:"id"`
	EmpresaID uint    `json:"empresa_id"`
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion string  `json:"direccion"`
	CreatedAt string  `json:"created_at"`
}

// normalizaOpcional deja en nil los campos opcionales vacíos para que los
// índices únicos por empresa no choquen entre clientes sin teléfono o correo.
func normalizaOpcional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func clienteDeEmpresa(c *fiber.Ctx, empresaID uint) (*models.Cliente, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID de cliente inválido")
	}

	var cliente models.Cliente
	if err := database.DB.
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&cliente).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Cliente no encontrado")
	}
	return &cliente, nil
}

// POST /api/clientes
func CreateClienteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateClienteRequest
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

		cliente := models.Cliente{
			EmpresaID: empresaID,
			Nombre:    strings.TrimSpace(body.Nombre),
			Telefono:  normalizaOpcional(body.Telefono),
			Correo:    normalizaOpcional(body.Correo),
			Direccion: strings.TrimSpace(body.Direccion),
		}

		if err := database.DB.Create(&cliente).Error; err != nil {
			return database.TraducirError(err, "No se pudo guardar el cliente")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &cliente.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "cliente",
				EntityID:    cliente.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Cliente agregado: %s", cliente.Nombre),
				Before:      nil,
				After:       cliente,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(buildClienteResponse(cliente))
	}
}

// GET /api/clientes?q=...
func ListClientesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("empresa_id = ?", empresaID)

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("nombre ILIKE ? OR telefono ILIKE ? OR correo ILIKE ?", like, like, like)
		}

		var rows []models.Cliente
		if err := dbq.Order("nombre asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los clientes")
		}

		resp := make([]ClienteResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, buildClienteResponse(r))
		}

		return c.JSON(resp)
	}
}

// GET /api/clientes/:id
func GetClienteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		cliente, err := clienteDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		return c.JSON(buildClienteResponse(*cliente))
	}
}

// PUT /api/clientes/:id
func UpdateClienteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		cliente, err := clienteDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var body UpdateClienteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		before := *cliente

		if body.Nombre != nil {
			if strings.TrimSpace(*body.Nombre) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			cliente.Nombre = strings.TrimSpace(*body.Nombre)
		}
		if body.Telefono != nil {
			cliente.Telefono = normalizaOpcional(body.Telefono)
		}
		if body.Correo != nil {
			cliente.Correo = normalizaOpcional(body.Correo)
		}
		if body.Direccion != nil {
			cliente.Direccion = strings.TrimSpace(*body.Direccion)
		}

		if err := database.DB.Save(cliente).Error; err != nil {
			return database.TraducirError(err, "No se pudo actualizar el cliente")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &cliente.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "cliente",
				EntityID:    cliente.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Cliente actualizado: %s", cliente.Nombre),
				Before:      before,
				After:       *cliente,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(buildClienteResponse(*cliente))
	}
}

// DELETE /api/clientes/:id
func DeleteClienteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		cliente, err := clienteDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(cliente).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el cliente")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &cliente.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "cliente",
				EntityID:    cliente.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Cliente eliminado: %s", cliente.Nombre),
				Before:      *cliente,
				After:       *cliente,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Cliente eliminado"})
	}
}

func buildClienteResponse(r models.Cliente) ClienteResponse {
	return ClienteResponse{
		ID:        r.ID,
		EmpresaID: r.EmpresaID,
		Nombre:    r.Nombre,
		Telefono:  r.Telefono,
		Correo:    r.Correo,
		Direccion: r.Direccion,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
