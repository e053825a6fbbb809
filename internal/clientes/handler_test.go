package clientes_test

import (
	"fmt"
	"net/http"
	"testing"

	"taller-backend/internal/clientes"
	"taller-backend/internal/models"
	"taller-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupClientes(t *testing.T) (*gorm.DB, *fiber.App, models.Empresa) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")

	app := testutil.NewApp(admin.ID, models.RolAdmin, empresa.ID, func(api fiber.Router) {
		api.Post("/clientes", clientes.CreateClienteHandler())
		api.Get("/clientes", clientes.ListClientesHandler())
		api.Get("/clientes/:id", clientes.GetClienteHandler())
		api.Put("/clientes/:id", clientes.UpdateClienteHandler())
		api.Delete("/clientes/:id", clientes.DeleteClienteHandler())
	})

	return db, app, empresa
}

func TestCreateClienteNormalizaOpcionalesVacios(t *testing.T) {
	db, app, _ := setupClientes(t)

	// Teléfono en blanco y sin correo: ambos deben quedar NULL para que el
	// índice único por empresa no choque entre clientes sin datos.
	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/clientes", fiber.Map{
		"nombre":   "  Juan Pérez  ",
		"telefono": "   ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var creado clientes.ClienteResponse
	testutil.DecodeJSON(t, resp, &creado)
	assert.Equal(t, "Juan Pérez", creado.Nombre)
	assert.Nil(t, creado.Telefono)
	assert.Nil(t, creado.Correo)

	var guardado models.Cliente
	require.NoError(t, db.First(&guardado, creado.ID).Error)
	assert.Nil(t, guardado.Telefono)

	// Un segundo cliente sin teléfono tampoco choca.
	resp = testutil.DoJSON(t, app, http.MethodPost, "/api/clientes", fiber.Map{
		"nombre": "Ana Ruiz",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateClienteSinNombre(t *testing.T) {
	_, app, _ := setupClientes(t)

	resp := testutil.DoJSON(t, app, http.MethodPost, "/api/clientes", fiber.Map{
		"nombre": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateClienteVaciaTelefono(t *testing.T) {
	db, app, empresa := setupClientes(t)

	telefono := "5550001111"
	require.NoError(t, db.Create(&models.Cliente{
		EmpresaID: empresa.ID,
		Nombre:    "Con teléfono",
		Telefono:  &telefono,
	}).Error)

	var cliente models.Cliente
	require.NoError(t, db.Where("nombre = ?", "Con teléfono").First(&cliente).Error)

	resp := testutil.DoJSON(t, app, http.MethodPut, fmt.Sprintf("/api/clientes/%d", cliente.ID), fiber.Map{
		"telefono": "",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actualizado clientes.ClienteResponse
	testutil.DecodeJSON(t, resp, &actualizado)
	assert.Nil(t, actualizado.Telefono)
}

func TestClientesDeOtraEmpresaNoSonVisibles(t *testing.T) {
	db, app, _ := setupClientes(t)

	otraEmpresa, _ := testutil.SeedEmpresaConAdmin(t, db, "taller-ajeno")
	ajeno := testutil.SeedCliente(t, db, otraEmpresa.ID, "Cliente ajeno")

	resp := testutil.DoJSON(t, app, http.MethodGet, fmt.Sprintf("/api/clientes/%d", ajeno.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = testutil.DoJSON(t, app, http.MethodGet, "/api/clientes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lista []clientes.ClienteResponse
	testutil.DecodeJSON(t, resp, &lista)
	assert.Empty(t, lista)
}

func TestDeleteCliente(t *testing.T) {
	db, app, empresa := setupClientes(t)
	cliente := testutil.SeedCliente(t, db, empresa.ID, "Por borrar")

	resp := testutil.DoJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/clientes/%d", cliente.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var total int64
	require.NoError(t, db.Model(&models.Cliente{}).Count(&total).Error)
	assert.Zero(t, total)
}
