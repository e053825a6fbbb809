package ventas

import (
	"fmt"
	"math"
	"time"

	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type VentaItemRequest struct {
	ProductoID     uint    `json:"producto_id"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"` // 0 = usar el precio de venta del producto
}

type CreateVentaRequest struct {
	ClienteID  *uint              `json:"cliente_id"` // nil = venta al público
	MetodoPago string             `json:"metodo_pago"`
	Items      []VentaItemRequest `json:"items"`
}

type VentaDetalleResponse struct {
	ID             uint    `json:"id"`
	ProductoID     uint    `json:"producto_id"`
	ProductoNombre string  `json:"producto_nombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

type VentaResponse struct {
	ID         uint                   `json:"id"`
	EmpresaID  uint                   `json:"empresa_id"`
	ClienteID  *uint                  `json:"cliente_id"`
	MetodoPago models.MetodoPago      `json:"metodo_pago"`
	Total      float64                `json:"total"`
	CreatedAt  string                 `json:"created_at"`
	Detalles   []VentaDetalleResponse `json:"detalles"`
}

// POST /api/ventas
//
// El descuento de stock es un solo UPDATE condicional por renglón: la base
// aplica "stock = stock - cantidad" únicamente si hay existencia suficiente,
// así dos cajas vendiendo el mismo producto nunca lo dejan en negativo. La
// disponibilidad se verifica ANTES de escribir nada; si aun así el UPDATE no
// afecta filas (otro operador ganó la carrera), la venta se rechaza ahí.
func CreateVentaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateVentaRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La venta debe tener al menos un producto")
		}
		switch models.MetodoPago(body.MetodoPago) {
		case models.MetodoEfectivo, models.MetodoTarjeta, models.MetodoTransferencia:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido")
		}
		for _, item := range body.Items {
			if item.ProductoID == 0 || item.Cantidad <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Cada renglón necesita producto y cantidad mayor a cero")
			}
			if item.PrecioUnitario < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio no puede ser negativo")
			}
		}

		if body.ClienteID != nil {
			var cliente models.Cliente
			if err := database.DB.
				Where("id = ? AND empresa_id = ?", *body.ClienteID, empresaID).
				First(&cliente).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Cliente no encontrado")
			}
		}

		// Verificación de existencia y disponibilidad antes de escribir
		productoIDs := make([]uint, 0, len(body.Items))
		for _, item := range body.Items {
			productoIDs = append(productoIDs, item.ProductoID)
		}
		var productos []models.Producto
		if err := database.DB.
			Where("empresa_id = ? AND id IN ?", empresaID, productoIDs).
			Find(&productos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron verificar los productos")
		}
		productoMap := make(map[uint]models.Producto, len(productos))
		for _, p := range productos {
			productoMap[p.ID] = p
		}
		for _, item := range body.Items {
			p, ok := productoMap[item.ProductoID]
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Producto no encontrado: %d", item.ProductoID))
			}
			if p.Stock < item.Cantidad {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Stock insuficiente de %s (disponible: %d)", p.Nombre, p.Stock))
			}
		}

		var total float64
		precios := make(map[uint]float64, len(body.Items))
		for _, item := range body.Items {
			precio := item.PrecioUnitario
			if precio == 0 {
				precio = productoMap[item.ProductoID].PrecioVenta
			}
			precios[item.ProductoID] = precio
			total += float64(item.Cantidad) * precio
		}
		total = math.Round(total)

		venta := models.Venta{
			EmpresaID:  empresaID,
			ClienteID:  body.ClienteID,
			MetodoPago: models.MetodoPago(body.MetodoPago),
			Total:      total,
		}
		if err := database.DB.Create(&venta).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la venta: "+err.Error())
		}

		for _, item := range body.Items {
			precio := precios[item.ProductoID]
			detalle := models.VentaDetalle{
				VentaID:        venta.ID,
				ProductoID:     item.ProductoID,
				Cantidad:       item.Cantidad,
				PrecioUnitario: precio,
				Subtotal:       float64(item.Cantidad) * precio,
			}
			if err := database.DB.Create(&detalle).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar un renglón de la venta: "+err.Error())
			}

			// Descuento atómico: la condición stock >= cantidad viaja en el
			// mismo UPDATE, no hay lectura-modificación-escritura del lado
			// del servidor de la API.
			res := database.DB.Exec(
				"UPDATE productos SET stock = stock - ? WHERE id = ? AND stock >= ?",
				item.Cantidad, item.ProductoID, item.Cantidad,
			)
			if res.Error != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo descontar el stock: "+res.Error.Error())
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Stock insuficiente de producto %d al confirmar la venta", item.ProductoID))
			}
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &venta.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "venta",
				EntityID:    venta.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Venta registrada: %d productos - $%.2f", len(body.Items), venta.Total),
				Before:      nil,
				After:       venta,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		var detalles []models.VentaDetalle
		if err := database.DB.Preload("Producto").
			Where("venta_id = ?", venta.ID).
			Order("id asc").
			Find(&detalles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los renglones de la venta")
		}

		return c.Status(fiber.StatusCreated).JSON(buildVentaResponse(venta, detalles))
	}
}

// GET /api/ventas?from=...&to=...&cliente_id=...
func ListVentasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Venta{}).
			Where("empresa_id = ?", empresaID)

		if clienteIDStr := c.Query("cliente_id"); clienteIDStr != "" {
			var cid uint
			if _, err := fmt.Sscan(clienteIDStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "cliente_id inválido")
			}
			dbq = dbq.Where("cliente_id = ?", cid)
		}

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

		var ventas []models.Venta
		if err := dbq.Order("created_at desc, id desc").Find(&ventas).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las ventas")
		}

		resp := make([]VentaResponse, 0, len(ventas))
		for _, v := range ventas {
			resp = append(resp, buildVentaResponse(v, nil))
		}

		return c.JSON(resp)
	}
}

// GET /api/ventas/:id
func GetVentaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		idStr := c.Params("id")
		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID de venta inválido")
		}

		var venta models.Venta
		if err := database.DB.
			Where("id = ? AND empresa_id = ?", id, empresaID).
			First(&venta).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Venta no encontrada")
		}

		var detalles []models.VentaDetalle
		if err := database.DB.Preload("Producto").
			Where("venta_id = ?", venta.ID).
			Order("id asc").
			Find(&detalles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los renglones")
		}

		return c.JSON(buildVentaResponse(venta, detalles))
	}
}

func buildVentaResponse(venta models.Venta, detalles []models.VentaDetalle) VentaResponse {
	detallesResp := make([]VentaDetalleResponse, 0, len(detalles))
	for _, d := range detalles {
		detallesResp = append(detallesResp, VentaDetalleResponse{
			ID:             d.ID,
			ProductoID:     d.ProductoID,
			ProductoNombre: d.Producto.Nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}

	return VentaResponse{
		ID:         venta.ID,
		EmpresaID:  venta.EmpresaID,
		ClienteID:  venta.ClienteID,
		MetodoPago: venta.MetodoPago,
		Total:      venta.Total,
		CreatedAt:  venta.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Detalles:   detallesResp,
	}
}
