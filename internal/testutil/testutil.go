// Package testutil arma el entorno común de las pruebas de handlers: una
// base SQLite en memoria con el esquema migrado y una app Fiber con los
// claims de autenticación ya instalados, igual que lo haría el middleware JWT.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"testing"

	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB abre una base en memoria, migra todos los modelos y la deja
// instalada como database.DB mientras dura la prueba.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// La base en memoria vive en la conexión; con más de una, cada una
	// vería una base distinta y vacía.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Empresa{},
		&models.Usuario{},
		&models.Cliente{},
		&models.Proveedor{},
		&models.Marca{},
		&models.Producto{},
		&models.Compra{},
		&models.CompraDetalle{},
		&models.MovimientoProveedor{},
		&models.Venta{},
		&models.VentaDetalle{},
		&models.Servicio{},
		&models.AuditLog{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

// NewApp construye una app con el mismo ErrorHandler del servidor real y un
// middleware que deja en Locals los claims del usuario indicado, para no
// tener que firmar y mandar un JWT en cada petición de prueba.
func NewApp(userID uint, rol models.RolUsuario, empresaID uint, register func(api fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	api := app.Group("/api")
	api.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxUserRolKey, rol)
		c.Locals(auth.CtxEmpresaIDKey, empresaID)
		return c.Next()
	})
	register(api)

	return app
}

// SeedEmpresaConAdmin crea una empresa con su primer usuario administrador.
func SeedEmpresaConAdmin(t *testing.T, db *gorm.DB, nombre string) (models.Empresa, models.Usuario) {
	t.Helper()

	empresa := models.Empresa{Nombre: nombre}
	require.NoError(t, db.Create(&empresa).Error)

	admin := models.Usuario{
		EmpresaID:    empresa.ID,
		Nombre:       "Admin " + nombre,
		Correo:       "admin@" + nombre + ".test",
		PasswordHash: "x",
		Rol:          models.RolAdmin,
		Activo:       true,
	}
	require.NoError(t, db.Create(&admin).Error)

	return empresa, admin
}

func SeedProveedor(t *testing.T, db *gorm.DB, empresaID uint, nombre string) models.Proveedor {
	t.Helper()

	proveedor := models.Proveedor{
		EmpresaID: empresaID,
		Nombre:    nombre,
		Activo:    true,
	}
	require.NoError(t, db.Create(&proveedor).Error)
	return proveedor
}

func SeedProducto(t *testing.T, db *gorm.DB, empresaID uint, nombre string, precioVenta float64, stock int) models.Producto {
	t.Helper()

	producto := models.Producto{
		EmpresaID:   empresaID,
		Nombre:      nombre,
		PrecioVenta: precioVenta,
		Stock:       stock,
	}
	require.NoError(t, db.Create(&producto).Error)
	return producto
}

func SeedCliente(t *testing.T, db *gorm.DB, empresaID uint, nombre string) models.Cliente {
	t.Helper()

	cliente := models.Cliente{
		EmpresaID: empresaID,
		Nombre:    nombre,
	}
	require.NoError(t, db.Create(&cliente).Error)
	return cliente
}

// DoJSON manda una petición con cuerpo JSON (o sin cuerpo si body es nil).
func DoJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// DecodeJSON lee y decodifica el cuerpo de la respuesta.
func DecodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out), "cuerpo: %s", string(data))
}
