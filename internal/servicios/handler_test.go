package servicios_test

import (
	"fmt"
	"net/http"
	"testing"

	"taller-backend/internal/models"
	"taller-backend/internal/servicios"
	"taller-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServicios(t *testing.T) (*gorm.DB, *fiber.App, models.Cliente) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	cliente := testutil.SeedCliente(t, db, empresa.ID, "María López")

	app := testutil.NewApp(admin.ID, models.RolAdmin, empresa.ID, func(api fiber.Router) {
		api.Post("/servicios", servicios.CreateServicioHandler())
		api.Get("/servicios", servicios.ListServiciosHandler())
		api.Get("/servicios/:id", servicios.GetServicioHandler())
		api.Put("/servicios/:id", servicios.UpdateServicioHandler())
		api.Post("/servicios/:id/estado", servicios.CambiarEstadoHandler())
	})

	return db, app, cliente
}

func crearServicio(t *testing.T, app *fiber.App, clienteID uint) servicios.ServicioResponse {
	t.Helper()

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/servicios", fiber.Map{
		"cliente_id": clienteID,
		"equipo":     "Laptop HP 15",
		"falla":      "No enciende",
		"costo":      800.0,
		"anticipo":   200.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var servicio servicios.ServicioResponse
	testutil.DecodeJSON(t, resp, &servicio)
	return servicio
}

func cambiarEstado(t *testing.T, app *fiber.App, id uint, estado string) *http.Response {
	t.Helper()
	return testutil.DoJSON(t, app, http.MethodPost, fmt.Sprintf("/api/servicios/%d/estado", id), fiber.Map{
		"estado": estado,
	})
}

func TestCreateServicioEntraComoRecibido(t *testing.T) {
	_, app, cliente := setupServicios(t)

	servicio := crearServicio(t, app, cliente.ID)
	assert.Equal(t, models.EstadoRecibido, servicio.Estado)
	assert.Equal(t, "María López", servicio.ClienteNombre)
	assert.Nil(t, servicio.FechaEntrega)
}

func TestFlujoDeEstadosCompleto(t *testing.T) {
	_, app, cliente := setupServicios(t)
	servicio := crearServicio(t, app, cliente.ID)

	for _, estado := range []string{"en_reparacion", "listo", "entregado"} {
		resp := cambiarEstado(t, app, servicio.ID, estado)
		require.Equal(t, http.StatusOK, resp.StatusCode, "transición a %s", estado)
	}

	resp := testutil.DoJSON(t, app, http.MethodGet, fmt.Sprintf("/api/servicios/%d", servicio.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entregado servicios.ServicioResponse
	testutil.DecodeJSON(t, resp, &entregado)
	assert.Equal(t, models.EstadoEntregado, entregado.Estado)
	assert.NotNil(t, entregado.FechaEntrega)
}

func TestTransicionesIlegales(t *testing.T) {
	_, app, cliente := setupServicios(t)

	casos := []struct {
		nombre  string
		previas []string
		intento string
	}{
		{"recibido no salta a listo", nil, "listo"},
		{"recibido no salta a entregado", nil, "entregado"},
		{"en reparación no salta a entregado", []string{"en_reparacion"}, "entregado"},
		{"entregado ya no se mueve", []string{"en_reparacion", "listo", "entregado"}, "recibido"},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			servicio := crearServicio(t, app, cliente.ID)
			for _, estado := range caso.previas {
				resp := cambiarEstado(t, app, servicio.ID, estado)
				require.Equal(t, http.StatusOK, resp.StatusCode)
			}
			resp := cambiarEstado(t, app, servicio.ID, caso.intento)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	}
}

func TestRegresarDeListoAReparacion(t *testing.T) {
	_, app, cliente := setupServicios(t)
	servicio := crearServicio(t, app, cliente.ID)

	// El equipo falló en la prueba final y regresa a la mesa.
	for _, estado := range []string{"en_reparacion", "listo", "en_reparacion"} {
		resp := cambiarEstado(t, app, servicio.ID, estado)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestEstadoDesconocidoEsBadRequest(t *testing.T) {
	_, app, cliente := setupServicios(t)
	servicio := crearServicio(t, app, cliente.ID)

	resp := cambiarEstado(t, app, servicio.ID, "perdido")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateBloqueadoTrasEntrega(t *testing.T) {
	_, app, cliente := setupServicios(t)
	servicio := crearServicio(t, app, cliente.ID)

	for _, estado := range []string{"en_reparacion", "listo", "entregado"} {
		resp := cambiarEstado(t, app, servicio.ID, estado)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := testutil.DoJSON(t, app, http.MethodPut, fmt.Sprintf("/api/servicios/%d", servicio.ID), fiber.Map{
		"diagnostico": "Cambio de fuente",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateActualizaDiagnosticoYCosto(t *testing.T) {
	_, app, cliente := setupServicios(t)
	servicio := crearServicio(t, app, cliente.ID)

	resp := testutil.DoJSON(t, app, http.MethodPut, fmt.Sprintf("/api/servicios/%d", servicio.ID), fiber.Map{
		"diagnostico": "Fuente dañada, requiere reemplazo",
		"costo":       950.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actualizado servicios.ServicioResponse
	testutil.DecodeJSON(t, resp, &actualizado)
	assert.Equal(t, "Fuente dañada, requiere reemplazo", actualizado.Diagnostico)
	assert.Equal(t, 950.0, actualizado.Costo)
	// La falla original no se tocó.
	assert.Equal(t, "No enciende", actualizado.Falla)
}

func TestListServiciosFiltraPorEstado(t *testing.T) {
	_, app, cliente := setupServicios(t)

	primero := crearServicio(t, app, cliente.ID)
	crearServicio(t, app, cliente.ID)

	resp := cambiarEstado(t, app, primero.ID, "en_reparacion")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/servicios?estado=en_reparacion", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lista []servicios.ServicioResponse
	testutil.DecodeJSON(t, resp, &lista)
	require.Len(t, lista, 1)
	assert.Equal(t, primero.ID, lista[0].ID)
}
