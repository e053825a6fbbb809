package almacen_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"taller-backend/internal/almacen"
	"taller-backend/internal/models"
	"taller-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAlmacen(t *testing.T) (*gorm.DB, *fiber.App, models.Empresa, string) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	dir := t.TempDir()

	app := testutil.NewApp(admin.ID, models.RolAdmin, empresa.ID, func(api fiber.Router) {
		api.Post("/empresa/logo", almacen.SubirLogoHandler(dir))
		api.Delete("/empresa/logo", almacen.EliminarLogoHandler(dir))
	})

	return db, app, empresa, dir
}

func subirArchivo(t *testing.T, app *fiber.App, nombre string, contenido []byte) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", nombre)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(contenido))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/empresa/logo", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSubirLogoGuardaArchivoYActualizaEmpresa(t *testing.T) {
	db, app, empresa, dir := setupAlmacen(t)

	resp := subirArchivo(t, app, "logo.png", []byte("imagen de prueba"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var guardada models.Empresa
	require.NoError(t, db.First(&guardada, empresa.ID).Error)
	assert.NotEmpty(t, guardada.LogoPath)
	assert.Equal(t, ".png", filepath.Ext(guardada.LogoPath))

	_, err := os.Stat(filepath.Join(dir, guardada.LogoPath))
	assert.NoError(t, err)
}

func TestSubirLogoReemplazaElAnterior(t *testing.T) {
	db, app, empresa, dir := setupAlmacen(t)

	resp := subirArchivo(t, app, "uno.png", []byte("primero"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var antes models.Empresa
	require.NoError(t, db.First(&antes, empresa.ID).Error)

	resp = subirArchivo(t, app, "dos.jpg", []byte("segundo"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var despues models.Empresa
	require.NoError(t, db.First(&despues, empresa.ID).Error)
	assert.NotEqual(t, antes.LogoPath, despues.LogoPath)

	// El archivo anterior ya no existe en disco.
	_, err := os.Stat(filepath.Join(dir, antes.LogoPath))
	assert.True(t, os.IsNotExist(err))
}

func TestSubirLogoRechazaExtension(t *testing.T) {
	_, app, _, _ := setupAlmacen(t)

	resp := subirArchivo(t, app, "script.exe", []byte("no"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEliminarLogo(t *testing.T) {
	db, app, empresa, dir := setupAlmacen(t)

	resp := subirArchivo(t, app, "logo.png", []byte("imagen"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var conLogo models.Empresa
	require.NoError(t, db.First(&conLogo, empresa.ID).Error)

	req, err := http.NewRequest(http.MethodDelete, "/api/empresa/logo", nil)
	require.NoError(t, err)
	delResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)

	var sinLogo models.Empresa
	require.NoError(t, db.First(&sinLogo, empresa.ID).Error)
	assert.Empty(t, sinLogo.LogoPath)

	_, err = os.Stat(filepath.Join(dir, conLogo.LogoPath))
	assert.True(t, os.IsNotExist(err))
}

func TestEliminarLogoSinLogo(t *testing.T) {
	_, app, _, _ := setupAlmacen(t)

	req, err := http.NewRequest(http.MethodDelete, "/api/empresa/logo", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
