package compras

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

// -------------------------
// Request/Response Types
// -------------------------

type CompraItemRequest struct {
	ProductoID          uint     `json:"producto_id"`
	Cantidad            int      `json:"cantidad"`
	PrecioUnitario      float64  `json:"precio_unitario"`
	Descuento           float64  `json:"descuento"` // por unidad, en pesos
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	// El carrito puede mandar un subtotal precalculado; se ignora siempre y
	// se recalcula en el servidor para no arrastrar estado viejo del cliente.
	Subtotal float64 `json:"subtotal"`
}

type CreateCompraRequest struct {
	ProveedorID uint                `json:"proveedor_id"`
	MetodoPago  string              `json:"metodo_pago"`
	Items       []CompraItemRequest `json:"items"`
	// Abono inmediato opcional registrado en la misma operación. El monto no
	// se limita contra el cargo: pagar de más deja el saldo en negativo y es
	// comportamiento aceptado.
	AbonarAhora bool    `json:"abonar_ahora"`
	MontoAbono  float64 `json:"monto_abono"`
	MetodoAbono string  `json:"metodo_abono"` // por defecto "efectivo"
}

type CompraDetalleResponse struct {
	ID                  uint     `json:"id"`
	ProductoID          uint     `json:"producto_id"`
	ProductoNombre      string   `json:"producto_nombre"`
	Cantidad            int      `json:"cantidad"`
	PrecioUnitario      float64  `json:"precio_unitario"`
	Descuento           float64  `json:"descuento"`
	DescuentoPorcentaje *float64 `json:"descuento_porcentaje"`
	Subtotal            float64  `json:"subtotal"`
}

type CompraResponse struct {
	ID              uint                    `json:"id"`
	EmpresaID       uint                    `json:"empresa_id"`
	ProveedorID     uint                    `json:"proveedor_id"`
	ProveedorNombre string                  `json:"proveedor_nombre"`
	MetodoPago      models.MetodoPago       `json:"metodo_pago"`
	Total           float64                 `json:"total"`
	TotalDescuento  float64                 `json:"total_descuento"`
	CreatedAt       string                  `json:"created_at"`
	Detalles        []CompraDetalleResponse `json:"detalles"`
	// Solo en la vista de detalle: suma de abonos etiquetados con esta compra
	// y lo que aún pesa sobre el saldo del proveedor. Cálculo de lectura, no
	// se guarda nunca.
	Abonado         *float64 `json:"abonado,omitempty"`
	AplicableASaldo *float64 `json:"aplicable_a_saldo,omitempty"`
}

func metodoPagoValido(m string) bool {
	switch models.MetodoPago(m) {
	case models.MetodoEfectivo, models.MetodoTarjeta, models.MetodoTransferencia, models.MetodoCredito:
		return true
	}
	return false
}

// -------------------------
// Handlers
// -------------------------

// POST /api/compras
//
// Secuencia de escrituras, en este orden: encabezado, renglones, cargo al
// proveedor, abono opcional. Cada paso es una petición independiente a la
// base; si uno falla se corta ahí y lo ya escrito NO se compensa. Ese hueco
// viene del flujo original y se conserva a propósito: resolverlo exigiría
// transacción o saga y cambiaría el comportamiento observable. Tampoco hay
// deduplicación: mandar dos veces el mismo carrito crea dos compras.
func CreateCompraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCompraRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		// Validaciones previas: nada se escribe si algo de esto falla
		if body.ProveedorID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Debes seleccionar un proveedor")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La compra debe tener al menos un producto")
		}
		if !metodoPagoValido(body.MetodoPago) {
			return fiber.NewError(fiber.StatusBadRequest, "Método de pago inválido")
		}
		for _, item := range body.Items {
			if item.ProductoID == 0 || item.Cantidad <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Cada renglón necesita producto y cantidad mayor a cero")
			}
			if item.PrecioUnitario < 0 || item.Descuento < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Precio y descuento no pueden ser negativos")
			}
		}

		var proveedor models.Proveedor
		if err := database.DB.
			Where("id = ? AND empresa_id = ?", body.ProveedorID, empresaID).
			First(&proveedor).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Proveedor no encontrado")
		}

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
			if _, ok := productoMap[item.ProductoID]; !ok {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Producto no encontrado: %d", item.ProductoID))
			}
		}

		// Paso 1: totales redondeados a pesos enteros
		var total, totalDescuento float64
		for _, item := range body.Items {
			cantidad := float64(item.Cantidad)
			total += cantidad*item.PrecioUnitario - cantidad*item.Descuento
			totalDescuento += cantidad * item.Descuento
		}
		total = math.Round(total)
		totalDescuento = math.Round(totalDescuento)

		// Paso 2: encabezado. Si falla, no se escribió nada más.
		compra := models.Compra{
			EmpresaID:      empresaID,
			ProveedorID:    body.ProveedorID,
			MetodoPago:     models.MetodoPago(body.MetodoPago),
			Total:          total,
			TotalDescuento: totalDescuento,
		}
		if err := database.DB.Create(&compra).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la compra: "+err.Error())
		}

		// Paso 3: renglones en el orden del carrito, subtotal recalculado
		// aquí (el que manda el cliente se ignora). Un renglón fallido corta
		// la secuencia sin deshacer los anteriores.
		for _, item := range body.Items {
			cantidad := float64(item.Cantidad)
			detalle := models.CompraDetalle{
				CompraID:            compra.ID,
				ProductoID:          item.ProductoID,
				Cantidad:            item.Cantidad,
				PrecioUnitario:      item.PrecioUnitario,
				Descuento:           item.Descuento,
				DescuentoPorcentaje: item.DescuentoPorcentaje,
				Subtotal:            cantidad*item.PrecioUnitario - cantidad*item.Descuento,
			}
			if err := database.DB.Create(&detalle).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar un renglón de la compra: "+err.Error())
			}
		}

		// Paso 4: cargo al ledger solo si la compra tiene total positivo
		if total > 0 {
			cargo := models.MovimientoProveedor{
				EmpresaID:   empresaID,
				ProveedorID: body.ProveedorID,
				CompraID:    &compra.ID,
				Tipo:        models.MovimientoCargo,
				Monto:       total,
				MetodoPago:  models.MetodoPago(body.MetodoPago),
				Descripcion: fmt.Sprintf("Cargo por compra #%d", compra.ID),
			}
			if err := database.DB.Create(&cargo).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el cargo al proveedor: "+err.Error())
			}
		}

		// Paso 5: abono inmediato opcional, independiente del cargo y sin
		// tope contra el total de la compra
		if body.AbonarAhora && body.MontoAbono > 0 {
			metodoAbono := body.MetodoAbono
			if !metodoPagoValido(metodoAbono) {
				metodoAbono = string(models.MetodoEfectivo)
			}
			abono := models.MovimientoProveedor{
				EmpresaID:   empresaID,
				ProveedorID: body.ProveedorID,
				CompraID:    &compra.ID,
				Tipo:        models.MovimientoAbono,
				Monto:       body.MontoAbono,
				MetodoPago:  models.MetodoPago(metodoAbono),
				Descripcion: fmt.Sprintf("Abono en compra #%d", compra.ID),
			}
			if err := database.DB.Create(&abono).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el abono: "+err.Error())
			}
		}

		// Bitácora
		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &compra.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "compra",
				EntityID:    compra.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Compra registrada: %s - %d productos - $%.2f", proveedor.Nombre, len(body.Items), compra.Total),
				Before:      nil,
				After:       compra,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		// Detalles recién creados para la respuesta
		var detalles []models.CompraDetalle
		if err := database.DB.Preload("Producto").
			Where("compra_id = ?", compra.ID).
			Order("id asc").
			Find(&detalles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los renglones de la compra")
		}

		return c.Status(fiber.StatusCreated).JSON(buildCompraResponse(compra, proveedor.Nombre, detalles, nil, nil))
	}
}

// GET /api/compras?proveedor_id=...&from=...&to=...
func ListComprasHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Compra{}).
			Preload("Proveedor").
			Where("empresa_id = ?", empresaID)

		if proveedorIDStr := c.Query("proveedor_id"); proveedorIDStr != "" {
			var pid uint
			if _, err := fmt.Sscan(proveedorIDStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "proveedor_id inválido")
			}
			dbq = dbq.Where("proveedor_id = ?", pid)
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

		var compras []models.Compra
		if err := dbq.Order("created_at desc, id desc").Find(&compras).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las compras")
		}

		resp := make([]CompraResponse, 0, len(compras))
		for _, compra := range compras {
			resp = append(resp, buildCompraResponse(compra, compra.Proveedor.Nombre, nil, nil, nil))
		}

		return c.JSON(resp)
	}
}

// GET /api/compras/:id
//
// Además del encabezado y los renglones devuelve cuánto se ha abonado
// etiquetado a esta compra y cuánto sigue pesando sobre el saldo. Son sumas
// de solo lectura; jamás se escriben de vuelta.
func GetCompraHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		compraIDStr := c.Params("id")
		var compraID uint
		if _, err := fmt.Sscan(compraIDStr, &compraID); err != nil || compraID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID de compra inválido")
		}

		var compra models.Compra
		if err := database.DB.
			Preload("Proveedor").
			Where("id = ? AND empresa_id = ?", compraID, empresaID).
			First(&compra).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Compra no encontrada")
		}

		var detalles []models.CompraDetalle
		if err := database.DB.Preload("Producto").
			Where("compra_id = ?", compra.ID).
			Order("id asc").
			Find(&detalles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron cargar los renglones")
		}

		var abonado float64
		if err := database.DB.Model(&models.MovimientoProveedor{}).
			Where("compra_id = ? AND tipo = ?", compra.ID, models.MovimientoAbono).
			Select("COALESCE(SUM(monto), 0)").
			Scan(&abonado).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron sumar los abonos")
		}

		aplicable := compra.Total - abonado

		return c.JSON(buildCompraResponse(compra, compra.Proveedor.Nombre, detalles, &abonado, &aplicable))
	}
}

func buildCompraResponse(compra models.Compra, proveedorNombre string, detalles []models.CompraDetalle, abonado, aplicable *float64) CompraResponse {
	detallesResp := make([]CompraDetalleResponse, 0, len(detalles))
	for _, d := range detalles {
		detallesResp = append(detallesResp, CompraDetalleResponse{
			ID:                  d.ID,
			ProductoID:          d.ProductoID,
			ProductoNombre:      d.Producto.Nombre,
			Cantidad:            d.Cantidad,
			PrecioUnitario:      d.PrecioUnitario,
			Descuento:           d.Descuento,
			DescuentoPorcentaje: d.DescuentoPorcentaje,
			Subtotal:            d.Subtotal,
		})
	}

	return CompraResponse{
		ID:              compra.ID,
		EmpresaID:       compra.EmpresaID,
		ProveedorID:     compra.ProveedorID,
		ProveedorNombre: proveedorNombre,
		MetodoPago:      compra.MetodoPago,
		Total:           compra.Total,
		TotalDescuento:  compra.TotalDescuento,
		CreatedAt:       compra.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Detalles:        detallesResp,
		Abonado:         abonado,
		AplicableASaldo: aplicable,
	}
}
