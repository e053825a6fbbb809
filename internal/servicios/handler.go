package servicios

import (
	"fmt"
	"strings"
	"time"

	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateServicioRequest struct {
	ClienteID uint    `json:"cliente_id"`
	Equipo    string  `json:"equipo"`
	Falla     string  `json:"falla"`
	Costo     float64 `json:"costo"`
	Anticipo  float64 `json:"anticipo"`
}

type UpdateServicioRequest struct {
	Equipo      *string  `json:"equipo"`
	Falla       *string  `json:"falla"`
	Diagnostico *string  `json:"diagnostico"`
	Costo       *float64 `json:"costo"`
	Anticipo    *float64 `json:"anticipo"`
}

type CambiarEstadoRequest struct {
	Estado string `json:"estado"`
}

type ServicioResponse struct {
	ID            uint                  `json:"id"`
	EmpresaID     uint                  `json:"empresa_id"`
	ClienteID     uint                  `json:"cliente_id"`
	ClienteNombre string                `json:"cliente_nombre"`
	Equipo        string                `json:"equipo"`
	Falla         string                `json:"falla"`
	Diagnostico   string                `json:"diagnostico"`
	Estado        models.EstadoServicio `json:"estado"`
	Costo         float64               `json:"costo"`
	Anticipo      float64               `json:"anticipo"`
	FechaEntrega  *string               `json:"fecha_entrega"`
	CreatedAt     string                `json:"created_at"`
}

// Transiciones legales del ticket. Una orden entregada ya no se mueve.
var transicionesValidas = map[models.EstadoServicio][]models.EstadoServicio{
	models.EstadoRecibido:     {models.EstadoEnReparacion},
	models.EstadoEnReparacion: {models.EstadoListo, models.EstadoRecibido},
	models.EstadoListo:        {models.EstadoEntregado, models.EstadoEnReparacion},
	models.EstadoEntregado:    {},
}

func transicionPermitida(desde, hacia models.EstadoServicio) bool {
	for _, e := range transicionesValidas[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}

func servicioDeEmpresa(c *fiber.Ctx, empresaID uint) (*models.Servicio, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID de servicio inválido")
	}

	var servicio models.Servicio
	if err := database.DB.Preload("Cliente").
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&servicio).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Servicio no encontrado")
	}
	return &servicio, nil
}

// POST /api/servicios
func CreateServicioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateServicioRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.ClienteID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un cliente")
		}
		if strings.TrimSpace(body.Equipo) == "" || strings.TrimSpace(body.Falla) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Equipo y falla son obligatorios")
		}
		if body.Costo < 0 || body.Anticipo < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Costo y anticipo no pueden ser negativos")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		var cliente models.Cliente
		if err := database.DB.
			Where("id = ? AND empresa_id = ?", body.ClienteID, empresaID).
			First(&cliente).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cliente no encontrado")
		}

		servicio := models.Servicio{
			EmpresaID: empresaID,
			ClienteID: body.ClienteID,
			Equipo:    strings.TrimSpace(body.Equipo),
			Falla:     strings.TrimSpace(body.Falla),
			Estado:    models.EstadoRecibido,
			Costo:     body.Costo,
			Anticipo:  body.Anticipo,
		}

		if err := database.DB.Create(&servicio).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el servicio")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &servicio.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "servicio",
				EntityID:    servicio.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Servicio recibido: %s de %s", servicio.Equipo, cliente.Nombre),
				Before:      nil,
				After:       servicio,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		servicio.Cliente = cliente
		return c.Status(fiber.StatusCreated).JSON(buildServicioResponse(servicio))
	}
}

// GET /api/servicios?estado=...&cliente_id=...
func ListServiciosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Cliente").
			Where("empresa_id = ?", empresaID)

		if estado := c.Query("estado"); estado != "" {
			dbq = dbq.Where("estado = ?", estado)
		}

		if clienteIDStr := c.Query("cliente_id"); clienteIDStr != "" {
			var cid uint
			if _, err := fmt.Sscan(clienteIDStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "cliente_id inválido")
			}
			dbq = dbq.Where("cliente_id = ?", cid)
		}

		var servicios []models.Servicio
		if err := dbq.Order("created_at desc, id desc").Find(&servicios).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los servicios")
		}

		resp := make([]ServicioResponse, 0, len(servicios))
		for _, s := range servicios {
			resp = append(resp, buildServicioResponse(s))
		}

		return c.JSON(resp)
	}
}

// GET /api/servicios/:id
func GetServicioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		servicio, err := servicioDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		return c.JSON(buildServicioResponse(*servicio))
	}
}

// PUT /api/servicios/:id
func UpdateServicioHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		servicio, err := servicioDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		if servicio.Estado == models.EstadoEntregado {
			return fiber.NewError(fiber.StatusConflict, "Un servicio entregado ya no se puede editar")
		}

		var body UpdateServicioRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		before := *servicio

		if body.Equipo != nil {
			if strings.TrimSpace(*body.Equipo) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El equipo no puede estar vacío")
			}
			servicio.Equipo = strings.TrimSpace(*body.Equipo)
		}
		if body.Falla != nil {
			servicio.Falla = strings.TrimSpace(*body.Falla)
		}
		if body.Diagnostico != nil {
			servicio.Diagnostico = strings.TrimSpace(*body.Diagnostico)
		}
		if body.Costo != nil {
			if *body.Costo < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El costo no puede ser negativo")
			}
			servicio.Costo = *body.Costo
		}
		if body.Anticipo != nil {
			if *body.Anticipo < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El anticipo no puede ser negativo")
			}
			servicio.Anticipo = *body.Anticipo
		}

		if err := database.DB.Save(servicio).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el servicio")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &servicio.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "servicio",
				EntityID:    servicio.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Servicio actualizado: %s", servicio.Equipo),
				Before:      before,
				After:       *servicio,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(buildServicioResponse(*servicio))
	}
}

// POST /api/servicios/:id/estado
func CambiarEstadoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		servicio, err := servicioDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var body CambiarEstadoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		nuevo := models.EstadoServicio(body.Estado)
		switch nuevo {
		case models.EstadoRecibido, models.EstadoEnReparacion, models.EstadoListo, models.EstadoEntregado:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Estado inválido")
		}

		if !transicionPermitida(servicio.Estado, nuevo) {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("No se puede pasar de '%s' a '%s'", servicio.Estado, nuevo))
		}

		before := *servicio
		servicio.Estado = nuevo
		if nuevo == models.EstadoEntregado {
			now := time.Now()
			servicio.FechaEntrega = &now
		}

		if err := database.DB.Save(servicio).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cambiar el estado")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &servicio.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "servicio",
				EntityID:    servicio.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Servicio %s: %s -> %s", servicio.Equipo, before.Estado, nuevo),
				Before:      before,
				After:       *servicio,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(buildServicioResponse(*servicio))
	}
}

func buildServicioResponse(s models.Servicio) ServicioResponse {
	var fechaEntrega *string
	if s.FechaEntrega != nil {
		formatted := s.FechaEntrega.Format("2006-01-02T15:04:05Z07:00")
		fechaEntrega = &formatted
	}

	return ServicioResponse{
		ID:            s.ID,
		EmpresaID:     s.EmpresaID,
		ClienteID:     s.ClienteID,
		ClienteNombre: s.Cliente.Nombre,
		Equipo:        s.Equipo,
		Falla:         s.Falla,
		Diagnostico:   s.Diagnostico,
		Estado:        s.Estado,
		Costo:         s.Costo,
		Anticipo:      s.Anticipo,
		FechaEntrega:  fechaEntrega,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
