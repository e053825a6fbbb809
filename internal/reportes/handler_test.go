package reportes_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"taller-backend/internal/models"
	"taller-backend/internal/reportes"
	"taller-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupReportes(t *testing.T) (*gorm.DB, *fiber.App, models.Empresa) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")

	app := testutil.NewApp(admin.ID, models.RolAdmin, empresa.ID, func(api fiber.Router) {
		api.Get("/reportes/compras/mensual", reportes.ResumenComprasMensualHandler())
		api.Get("/reportes/ventas/mensual", reportes.ResumenVentasMensualHandler())
		api.Get("/reportes/compras/export", reportes.ExportComprasXLSXHandler())
	})

	return db, app, empresa
}

func seedCompra(t *testing.T, db *gorm.DB, empresaID, proveedorID uint, metodo models.MetodoPago, total float64) models.Compra {
	t.Helper()
	compra := models.Compra{
		EmpresaID:   empresaID,
		ProveedorID: proveedorID,
		MetodoPago:  metodo,
		Total:       total,
	}
	require.NoError(t, db.Create(&compra).Error)
	return compra
}

func TestResumenComprasMensualAgrupaPorMetodo(t *testing.T) {
	db, app, empresa := setupReportes(t)
	proveedor := testutil.SeedProveedor(t, db, empresa.ID, "Refaccionaria")

	seedCompra(t, db, empresa.ID, proveedor.ID, models.MetodoEfectivo, 100)
	seedCompra(t, db, empresa.ID, proveedor.ID, models.MetodoEfectivo, 250)
	seedCompra(t, db, empresa.ID, proveedor.ID, models.MetodoCredito, 400)

	// Las compras de otra empresa no deben entrar al resumen.
	otraEmpresa, _ := testutil.SeedEmpresaConAdmin(t, db, "taller-ajeno")
	ajeno := testutil.SeedProveedor(t, db, otraEmpresa.ID, "Ajeno")
	seedCompra(t, db, otraEmpresa.ID, ajeno.ID, models.MetodoEfectivo, 9999)

	hoy := seedCompra(t, db, empresa.ID, proveedor.ID, models.MetodoTarjeta, 0).CreatedAt

	path := "/api/reportes/compras/mensual?year=" + hoy.Format("2006") + "&month=" + hoy.Format("1")
	resp := testutil.DoJSON(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var resumen reportes.ResumenMensualResponse
	testutil.DecodeJSON(t, resp, &resumen)

	totales := make(map[models.MetodoPago]float64)
	cuentas := make(map[models.MetodoPago]int64)
	for _, item := range resumen.Items {
		totales[item.MetodoPago] = item.Total
		cuentas[item.MetodoPago] = item.Cuenta
	}

	assert.Equal(t, 350.0, totales[models.MetodoEfectivo])
	assert.Equal(t, int64(2), cuentas[models.MetodoEfectivo])
	assert.Equal(t, 400.0, totales[models.MetodoCredito])
	assert.Equal(t, 750.0, resumen.GranTotal)
}

func TestResumenMensualValidaParametros(t *testing.T) {
	_, app, _ := setupReportes(t)

	casos := []string{
		"/api/reportes/compras/mensual",
		"/api/reportes/compras/mensual?year=2026",
		"/api/reportes/compras/mensual?year=1999&month=5",
		"/api/reportes/compras/mensual?year=2026&month=13",
		"/api/reportes/compras/mensual?year=abc&month=5",
	}
	for _, path := range casos {
		resp := testutil.DoJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestResumenVentasMensualVacio(t *testing.T) {
	_, app, _ := setupReportes(t)

	resp := testutil.DoJSON(t, app, http.MethodGet, "/api/reportes/ventas/mensual?year=2026&month=8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var resumen reportes.ResumenMensualResponse
	testutil.DecodeJSON(t, resp, &resumen)
	assert.Empty(t, resumen.Items)
	assert.Zero(t, resumen.GranTotal)
}

func TestExportComprasGeneraXLSXLegible(t *testing.T) {
	db, app, empresa := setupReportes(t)
	proveedor := testutil.SeedProveedor(t, db, empresa.ID, "Refaccionaria")
	producto := testutil.SeedProducto(t, db, empresa.ID, "Pantalla 15.6", 1800, 0)

	compra := seedCompra(t, db, empresa.ID, proveedor.ID, models.MetodoCredito, 3600)
	require.NoError(t, db.Create(&models.CompraDetalle{
		CompraID:       compra.ID,
		ProductoID:     producto.ID,
		Cantidad:       2,
		PrecioUnitario: 1800,
		Subtotal:       3600,
	}).Error)

	path := "/api/reportes/compras/export?year=" + compra.CreatedAt.Format("2006") + "&month=" + compra.CreatedAt.Format("1")
	resp := testutil.DoJSON(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "compras_")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Compras")
	require.NoError(t, err)
	require.Len(t, rows, 2) // encabezado + un renglón

	assert.Equal(t, "Folio", rows[0][0])
	assert.Equal(t, "Refaccionaria", rows[1][2])
	assert.Equal(t, "Pantalla 15.6", rows[1][3])
}
