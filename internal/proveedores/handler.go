package proveedores

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

// -------------------------
// Request/Response Types
// -------------------------

type CreateProveedorRequest struct {
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion string  `json:"direccion"`
}

type UpdateProveedorRequest struct {
	Nombre    *string `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion *string `json:"direccion"`
	Activo    *bool   `json:"activo"`
}

type ProveedorResponse struct {
	ID        uint    `json:"id"`
	EmpresaID uint    `json:"empresa_id"`
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Direccion string  `json:"direccion"`
	Activo    bool    `json:"activo"`
	CreatedAt string  `json:"created_at"`
}

type MovimientoResponse struct {
	ID          uint                  `json:"id"`
	ProveedorID uint                  `json:"proveedor_id"`
	CompraID    *uint                 `json:"compra_id"`
	Tipo        models.TipoMovimiento `json:"tipo"`
	Monto       float64               `json:"monto"`
	MetodoPago  models.MetodoPago     `json:"metodo_pago"`
	Descripcion string                `json:"descripcion"`
	CreatedAt   string                `json:"created_at"`
}

type SaldoResponse struct {
	ProveedorID uint    `json:"proveedor_id"`
	TotalCargos float64 `json:"total_cargos"`
	TotalAbonos float64 `json:"total_abonos"`
	Saldo       float64 `json:"saldo"` // puede ser negativo si se abonó de más
}

type CreateAbonoRequest struct {
	Monto       float64 `json:"monto"`
	MetodoPago  string  `json:"metodo_pago"`
	Descripcion string  `json:"descripcion"`
}

func proveedorDeEmpresa(c *fiber.Ctx, empresaID uint) (*models.Proveedor, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID de proveedor inválido")
	}

	var proveedor models.Proveedor
	if err := database.DB.
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&proveedor).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Proveedor no encontrado")
	}
	return &proveedor, nil
}

// -------------------------
// Proveedor CRUD
// -------------------------

// POST /api/proveedores
func CreateProveedorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProveedorRequest
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

		proveedor := models.Proveedor{
			EmpresaID: empresaID,
			Nombre:    strings.TrimSpace(body.Nombre),
			Telefono:  body.Telefono,
			Correo:    body.Correo,
			Direccion: strings.TrimSpace(body.Direccion),
			Activo:    true,
		}

		if err := database.DB.Create(&proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el proveedor")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &proveedor.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "proveedor",
				EntityID:    proveedor.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Proveedor agregado: %s", proveedor.Nombre),
				Before:      nil,
				After:       proveedor,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(buildProveedorResponse(proveedor))
	}
}

// GET /api/proveedores?activo=true
func ListProveedoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("empresa_id = ?", empresaID)
		if c.Query("activo") == "true" {
			dbq = dbq.Where("activo = ?", true)
		}

		var proveedores []models.Proveedor
		if err := dbq.Order("nombre asc").Find(&proveedores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los proveedores")
		}

		resp := make([]ProveedorResponse, 0, len(proveedores))
		for _, p := range proveedores {
			resp = append(resp, buildProveedorResponse(p))
		}

		return c.JSON(resp)
	}
}

// PUT /api/proveedores/:id
func UpdateProveedorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		proveedor, err := proveedorDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var body UpdateProveedorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		before := *proveedor

		if body.Nombre != nil {
			if strings.TrimSpace(*body.Nombre) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			proveedor.Nombre = strings.TrimSpace(*body.Nombre)
		}
		if body.Telefono != nil {
			proveedor.Telefono = body.Telefono
		}
		if body.Correo != nil {
			proveedor.Correo = body.Correo
		}
		if body.Direccion != nil {
			proveedor.Direccion = strings.TrimSpace(*body.Direccion)
		}
		if body.Activo != nil {
			proveedor.Activo = *body.Activo
		}

		if err := database.DB.Save(proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el proveedor")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &proveedor.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "proveedor",
				EntityID:    proveedor.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Proveedor actualizado: %s", proveedor.Nombre),
				Before:      before,
				After:       *proveedor,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(buildProveedorResponse(*proveedor))
	}
}

// -------------------------
// Ledger del proveedor
// -------------------------

// GET /api/proveedores/:id/movimientos?from=...&to=...
// Historial completo de cargos y abonos, del más reciente al más viejo.
func ListMovimientosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		proveedor, err := proveedorDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.MovimientoProveedor{}).
			Where("proveedor_id = ?", proveedor.ID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from inválido")
			}
			dbq = dbq.Where("created_at >= ?", from)
		}

		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to inválido")
			}
			dbq = dbq.Where("created_at < ?", to.AddDate(0, 0, 1))
		}

		var movs []models.MovimientoProveedor
		if err := dbq.Order("created_at desc, id desc").Find(&movs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los movimientos")
		}

		resp := make([]MovimientoResponse, 0, len(movs))
		for _, m := range movs {
			resp = append(resp, MovimientoResponse{
				ID:          m.ID,
				ProveedorID: m.ProveedorID,
				CompraID:    m.CompraID,
				Tipo:        m.Tipo,
				Monto:       m.Monto,
				MetodoPago:  m.MetodoPago,
				Descripcion: m.Descripcion,
				CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/proveedores/:id/saldo
// El saldo se calcula siempre con agregados de SQL sobre el log de
// movimientos; nunca hay un saldo almacenado que mantener.
func GetSaldoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		proveedor, err := proveedorDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var totalCargos float64
		if err := database.DB.Model(&models.MovimientoProveedor{}).
			Where("proveedor_id = ? AND tipo = ?", proveedor.ID, models.MovimientoCargo).
			Select("COALESCE(SUM(monto), 0)").
			Scan(&totalCargos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron sumar los cargos")
		}

		var totalAbonos float64
		if err := database.DB.Model(&models.MovimientoProveedor{}).
			Where("proveedor_id = ? AND tipo = ?", proveedor.ID, models.MovimientoAbono).
			Select("COALESCE(SUM(monto), 0)").
			Scan(&totalAbonos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron sumar los abonos")
		}

		return c.JSON(SaldoResponse{
			ProveedorID: proveedor.ID,
			TotalCargos: totalCargos,
			TotalAbonos: totalAbonos,
			Saldo:       totalCargos - totalAbonos,
		})
	}
}

// POST /api/proveedores/:id/abonos
// Abono suelto, fuera de una compra. Tampoco se limita contra el saldo.
func CreateAbonoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAbonoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.Monto <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "El monto debe ser mayor a cero")
		}

		metodo := body.MetodoPago
		switch models.MetodoPago(metodo) {
		case models.MetodoEfectivo, models.MetodoTarjeta, models.MetodoTransferencia, models.MetodoCredito:
		default:
			metodo = string(models.MetodoEfectivo)
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		proveedor, err := proveedorDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		descripcion := strings.TrimSpace(body.Descripcion)
		if descripcion == "" {
			descripcion = fmt.Sprintf("Abono a %s", proveedor.Nombre)
		}

		abono := models.MovimientoProveedor{
			EmpresaID:   empresaID,
			ProveedorID: proveedor.ID,
			Tipo:        models.MovimientoAbono,
			Monto:       body.Monto,
			MetodoPago:  models.MetodoPago(metodo),
			Descripcion: descripcion,
		}

		if err := database.DB.Create(&abono).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el abono")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &abono.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "movimiento_proveedor",
				EntityID:    abono.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Abono a %s: $%.2f", proveedor.Nombre, abono.Monto),
				Before:      nil,
				After:       abono,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(MovimientoResponse{
			ID:          abono.ID,
			ProveedorID: abono.ProveedorID,
			CompraID:    abono.CompraID,
			Tipo:        abono.Tipo,
			Monto:       abono.Monto,
			MetodoPago:  abono.MetodoPago,
			Descripcion: abono.Descripcion,
			CreatedAt:   abono.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

func buildProveedorResponse(p models.Proveedor) ProveedorResponse {
	return ProveedorResponse{
		ID:        p.ID,
		EmpresaID: p.EmpresaID,
		Nombre:    p.Nombre,
		Telefono:  p.Telefono,
		Correo:    p.Correo,
		Direccion: p.Direccion,
		Activo:    p.Activo,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
