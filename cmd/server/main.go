package main

import (
	"log"
	"strings"

	"taller-backend/internal/almacen"
	"taller-backend/internal/audit"
	"taller-backend/internal/auth"
	"taller-backend/internal/clientes"
	"taller-backend/internal/compras"
	"taller-backend/internal/config"
	"taller-backend/internal/database"
	"taller-backend/internal/empleados"
	"taller-backend/internal/inventario"
	"taller-backend/internal/models"
	"taller-backend/internal/proveedores"
	"taller-backend/internal/reportes"
	"taller-backend/internal/servicios"
	"taller-backend/internal/ventas"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Logotipos de empresa servidos como archivos estáticos
	app.Static("/logos", cfg.LogoPath)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterEmpresaHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Empresa
	protected.Post("/empresa/logo", almacen.SubirLogoHandler(cfg.LogoPath))
	protected.Delete("/empresa/logo", almacen.EliminarLogoHandler(cfg.LogoPath))

	// Clientes
	protected.Post("/clientes", clientes.CreateClienteHandler())
	protected.Get("/clientes", clientes.ListClientesHandler())
	protected.Get("/clientes/:id", clientes.GetClienteHandler())
	protected.Put("/clientes/:id", clientes.UpdateClienteHandler())
	protected.Delete("/clientes/:id", clientes.DeleteClienteHandler())

	// Proveedores y su estado de cuenta
	protected.Post("/proveedores", proveedores.CreateProveedorHandler())
	protected.Get("/proveedores", proveedores.ListProveedoresHandler())
	protected.Put("/proveedores/:id", proveedores.UpdateProveedorHandler())
	protected.Get("/proveedores/:id/movimientos", proveedores.ListMovimientosHandler())
	protected.Get("/proveedores/:id/saldo", proveedores.GetSaldoHandler())
	protected.Post("/proveedores/:id/abonos", proveedores.CreateAbonoHandler())

	// Catálogo
	protected.Post("/marcas", inventario.CreateMarcaHandler())
	protected.Get("/marcas", inventario.ListMarcasHandler())
	protected.Delete("/marcas/:id", inventario.DeleteMarcaHandler())
	protected.Post("/productos", inventario.CreateProductoHandler())
	protected.Get("/productos", inventario.ListProductosHandler())
	protected.Get("/productos/:id", inventario.GetProductoHandler())
	protected.Put("/productos/:id", inventario.UpdateProductoHandler())
	protected.Delete("/productos/:id", inventario.DeleteProductoHandler())

	// Compras a proveedor
	protected.Post("/compras", compras.CreateCompraHandler())
	protected.Get("/compras", compras.ListComprasHandler())
	protected.Get("/compras/:id", compras.GetCompraHandler())

	// Ventas de mostrador
	protected.Post("/ventas", ventas.CreateVentaHandler())
	protected.Get("/ventas", ventas.ListVentasHandler())
	protected.Get("/ventas/:id", ventas.GetVentaHandler())

	// Servicios de reparación
	protected.Post("/servicios", servicios.CreateServicioHandler())
	protected.Get("/servicios", servicios.ListServiciosHandler())
	protected.Get("/servicios/:id", servicios.GetServicioHandler())
	protected.Put("/servicios/:id", servicios.UpdateServicioHandler())
	protected.Post("/servicios/:id/estado", servicios.CambiarEstadoHandler())

	// Reportes
	protected.Get("/reportes/compras/mensual", reportes.ResumenComprasMensualHandler())
	protected.Get("/reportes/ventas/mensual", reportes.ResumenVentasMensualHandler())
	protected.Get("/reportes/serie-diaria", reportes.SerieDiariaHandler())
	protected.Get("/reportes/compras/export", reportes.ExportComprasXLSXHandler())

	// Solo administradores
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRol(models.RolAdmin))

	adminRoutes.Post("/empleados", empleados.CreateEmpleadoHandler())
	adminRoutes.Get("/empleados", empleados.ListEmpleadosHandler())
	adminRoutes.Put("/empleados/:id", empleados.UpdateEmpleadoHandler())

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Servidor escuchando en el puerto", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
