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

type CreateProductoRequest struct {
	Nombre       string  `json:"nombre"`
	Codigo       string  `json:"codigo"`
	MarcaID      *uint   `json:"marca_id"`
	PrecioCompra float64 `json:"precio_compra"`
	PrecioVenta  float64 `json:"precio_venta"`
	Stock        int     `json:"stock"`
}

type UpdateProductoRequest struct {
	Nombre       *string  `json:"nombre"`
	Codigo       *string  `json:"codigo"`
	MarcaID      *uint    `json:"marca_id"`
	PrecioCompra *float64 `json:"precio_compra"`
	PrecioVenta  *float64 `json:"precio_venta"`
}

type ProductoResponse struct {
	ID           uint    `json:"id"`
	EmpresaID    uint    `json:"empresa_id"`
	Nombre       string  `json:"nombre"`
	Codigo       string  `json:"codigo"`
	MarcaID      *uint   `json:"marca_id"`
	MarcaNombre  string  `json:"marca_nombre"`
	PrecioCompra float64 `json:"precio_compra"`
	PrecioVenta  float64 `json:"precio_venta"`
	Stock        int     `json:"stock"`
	CreatedAt    string  `json:"created_at"`
}

func productoDeEmpresa(c *fiber.Ctx, empresaID uint) (*models.Producto, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "ID de producto inválido")
	}

	var producto models.Producto
	if err := database.DB.Preload("Marca").
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&producto).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
	}
	return &producto, nil
}

// POST /api/productos
func CreateProductoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if strings.TrimSpace(body.Nombre) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
		}
		if body.PrecioCompra < 0 || body.PrecioVenta < 0 || body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Precios y stock no pueden ser negativos")
		}

		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		if body.MarcaID != nil {
			var marca models.Marca
			if err := database.DB.
				Where("id = ? AND empresa_id = ?", *body.MarcaID, empresaID).
				First(&marca).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Marca no encontrada")
			}
		}

		producto := models.Producto{
			EmpresaID:    empresaID,
			Nombre:       strings.TrimSpace(body.Nombre),
			Codigo:       strings.TrimSpace(body.Codigo),
			MarcaID:      body.MarcaID,
			PrecioCompra: body.PrecioCompra,
			PrecioVenta:  body.PrecioVenta,
			Stock:        body.Stock,
		}

		if err := database.DB.Create(&producto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el producto")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &producto.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "producto",
				EntityID:    producto.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Producto agregado: %s", producto.Nombre),
				Before:      nil,
				After:       producto,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(buildProductoResponse(producto))
	}
}

// GET /api/productos?q=...&marca_id=...
func ListProductosHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Marca").
			Where("empresa_id = ?", empresaID)

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("nombre ILIKE ? OR codigo ILIKE ?", like, like)
		}

		if marcaIDStr := c.Query("marca_id"); marcaIDStr != "" {
			var mid uint
			if _, err := fmt.Sscan(marcaIDStr, &mid); err != nil || mid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "marca_id inválido")
			}
			dbq = dbq.Where("marca_id = ?", mid)
		}

		var productos []models.Producto
		if err := dbq.Order("nombre asc").Find(&productos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los productos")
		}

		resp := make([]ProductoResponse, 0, len(productos))
		for _, p := range productos {
			resp = append(resp, buildProductoResponse(p))
		}

		return c.JSON(resp)
	}
}

// GET /api/productos/:id
func GetProductoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		producto, err := productoDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		return c.JSON(buildProductoResponse(*producto))
	}
}

// PUT /api/productos/:id
// El stock NO se edita por aquí: solo lo mueven las ventas (descuento
// condicional) para que el inventario no se desincronice a mano.
func UpdateProductoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		producto, err := productoDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var body UpdateProductoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		before := *producto

		if body.Nombre != nil {
			if strings.TrimSpace(*body.Nombre) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			producto.Nombre = strings.TrimSpace(*body.Nombre)
		}
		if body.Codigo != nil {
			producto.Codigo = strings.TrimSpace(*body.Codigo)
		}
		if body.MarcaID != nil {
			var marca models.Marca
			if err := database.DB.
				Where("id = ? AND empresa_id = ?", *body.MarcaID, empresaID).
				First(&marca).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Marca no encontrada")
			}
			producto.MarcaID = body.MarcaID
		}
		if body.PrecioCompra != nil {
			if *body.PrecioCompra < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio de compra no puede ser negativo")
			}
			producto.PrecioCompra = *body.PrecioCompra
		}
		if body.PrecioVenta != nil {
			if *body.PrecioVenta < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "El precio de venta no puede ser negativo")
			}
			producto.PrecioVenta = *body.PrecioVenta
		}

		if err := database.DB.Save(producto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el producto")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &producto.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "producto",
				EntityID:    producto.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Producto actualizado: %s", producto.Nombre),
				Before:      before,
				After:       *producto,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(buildProductoResponse(*producto))
	}
}

// DELETE /api/productos/:id
func DeleteProductoHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		producto, err := productoDeEmpresa(c, empresaID)
		if err != nil {
			return err
		}

		var enUso int64
		database.DB.Model(&models.CompraDetalle{}).
			Where("producto_id = ?", producto.ID).
			Count(&enUso)
		if enUso > 0 {
			return fiber.NewError(fiber.StatusConflict, "El producto tiene compras registradas y no se puede eliminar")
		}

		if err := database.DB.Delete(producto).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el producto")
		}

		userID, userName, uErr := auth.UserInfoFromCtx(c)
		if uErr == nil {
			empresaIDForLog := &producto.EmpresaID
			if logErr := audit.WriteLog(audit.LogOptions{
				EmpresaID:   empresaIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "producto",
				EntityID:    producto.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Producto eliminado: %s", producto.Nombre),
				Before:      *producto,
				After:       *producto,
			}); logErr != nil {
				fmt.Printf("No se pudo escribir el log de auditoría: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Producto eliminado"})
	}
}

func buildProductoResponse(p models.Producto) ProductoResponse {
	marcaNombre := ""
	if p.Marca != nil {
		marcaNombre = p.Marca.Nombre
	}
	return ProductoResponse{
		ID:           p.ID,
		EmpresaID:    p.EmpresaID,
		Nombre:       p.Nombre,
		Codigo:       p.Codigo,
		MarcaID:      p.MarcaID,
		MarcaNombre:  marcaNombre,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
