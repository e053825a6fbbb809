package empleados

import (
	"fmt"
	"strings"

	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateEmpleadoRequest struct {
	Nombre   string `json:"nombre"`
	Correo   string `json:"correo"`
	Password string `json:"password"`
	Telefono string `json:"telefono"`
	Puesto   string `json:"puesto"`
}

type UpdateEmpleadoRequest struct {
	Nombre   *string `json:"nombre"`
	Telefono *string `json:"telefono"`
	Puesto   *string `json:"puesto"`
	Activo   *bool   `json:"activo"`
	Password *string `json:"password"`
}

type EmpleadoResponse struct {
	ID        uint              `json:"id"`
	EmpresaID uint              `json:"empresa_id"`
	Nombre    string            `json:"nombre"`
	Correo    string            `json:"correo"`
	Rol       models.RolUsuario `json:"rol"`
	Telefono  string            `json:"telefono"`
	Puesto    string            `json:"puesto"`
	Activo    bool              `json:"activo"`
	CreatedAt string            `json:"created_at"`
}

// POST /api/empleados (solo admin)
func CreateEmpleadoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEmpleadoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Correo = strings.TrimSpace(strings.ToLower(body.Correo))

		if strings.TrimSpace(body.Nombre) == "" || body.Correo == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, correo y contraseña son obligatorios")
		}
		if len(body.Password) < 8 {
			return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
		}

		empleado := models.Usuario{
			EmpresaID:    empresaID,
			Nombre:       strings.TrimSpace(body.Nombre),
			Correo:       body.Correo,
			PasswordHash: string(hash),
			Rol:          models.RolEmpleado,
			Telefono:     strings.TrimSpace(body.Telefono),
			Puesto:       strings.TrimSpace(body.Puesto),
			Activo:       true,
		}

		if err := database.DB.Create(&empleado).Error; err != nil {
			return database.TraducirError(err, "No se pudo crear el empleado")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &empleado.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "empleado",
				EntityID:    empleado.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Empleado agregado: %s", empleado.Nombre),
				Before:      nil,
				After: fiber.Map{
					"id":     empleado.ID,
					"nombre": empleado.Nombre,
					"correo": empleado.Correo,
					"puesto": empleado.Puesto,
				},
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(buildEmpleadoResponse(empleado))
	}
}

// GET /api/empleados (solo admin)
func ListEmpleadosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		var empleados []models.Usuario
		if err := database.DB.
			Where("empresa_id = ? AND rol = ?", empresaID, models.RolEmpleado).
			Order("nombre asc").
			Find(&empleados).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los empleados")
		}

		resp := make([]EmpleadoResponse, 0, len(empleados))
		for _, e := range empleados {
			resp = append(resp, buildEmpleadoResponse(e))
		}

		return c.JSON(resp)
	}
}

// PUT /api/empleados/:id (solo admin)
func UpdateEmpleadoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		idStr := c.Params("id")
		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID de empleado inválido")
		}

		var empleado models.Usuario
		if err := database.DB.
			Where("id = ? AND empresa_id = ? AND rol = ?", id, empresaID, models.RolEmpleado).
			First(&empleado).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Empleado no encontrado")
		}

		var body UpdateEmpleadoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.Nombre != nil {
			if strings.TrimSpace(*body.Nombre) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			empleado.Nombre = strings.TrimSpace(*body.Nombre)
		}
		if body.Telefono != nil {
			empleado.Telefono = strings.TrimSpace(*body.Telefono)
		}
		if body.Puesto != nil {
			empleado.Puesto = strings.TrimSpace(*body.Puesto)
		}
		if body.Activo != nil {
			empleado.Activo = *body.Activo
		}
		if body.Password != nil {
			if len(*body.Password) < 8 {
				return fiber.NewError(fiber.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cifrar la contraseña")
			}
			empleado.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&empleado).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el empleado")
		}

		return c.JSON(buildEmpleadoResponse(empleado))
	}
}

func buildEmpleadoResponse(e models.Usuario) EmpleadoResponse {
	return EmpleadoResponse{
		ID:        e.ID,
		EmpresaID: e.EmpresaID,
		Nombre:    e.Nombre,
		Correo:    e.Correo,
		Rol:       e.Rol,
		Telefono:  e.Telefono,
		Puesto:    e.Puesto,
		Activo:    e.Activo,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
