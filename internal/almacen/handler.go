// Package almacen guarda en disco local los archivos de la aplicación,
// por ahora únicamente el logotipo de cada empresa. Los nombres en disco
// son UUID para evitar colisiones entre empresas.
package almacen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var extensionesPermitidas = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// POST /api/empresa/logo  (multipart, campo "file")
// Sube o reemplaza el logotipo de la empresa del usuario autenticado.
func SubirLogoHandler(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No se pudo leer el archivo: "+err.Error())
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !extensionesPermitidas[ext] {
			return fiber.NewError(fiber.StatusBadRequest, "Formato de imagen no permitido (png, jpg, jpeg, webp)")
		}
		if fileHeader.Size > 2*1024*1024 {
			return fiber.NewError(fiber.StatusBadRequest, "El logotipo no puede pesar más de 2 MB")
		}

		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo preparar la carpeta de logotipos")
		}

		var empresa models.Empresa
		if err := database.DB.First(&empresa, empresaID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Empresa no encontrada")
		}

		nombre := uuid.New().String() + ext
		destino := filepath.Join(basePath, nombre)
		if err := c.SaveFile(fileHeader, destino); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el archivo")
		}

		anterior := empresa.LogoPath
		empresa.LogoPath = nombre
		if err := database.DB.Save(&empresa).Error; err != nil {
			os.Remove(destino)
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la empresa")
		}

		// El archivo anterior ya no lo referencia nadie.
		if anterior != "" {
			os.Remove(filepath.Join(basePath, anterior))
		}

		return c.JSON(fiber.Map{
			"logo_path": nombre,
			"logo_url":  fmt.Sprintf("/logos/%s", nombre),
		})
	}
}

// DELETE /api/empresa/logo
func EliminarLogoHandler(basePath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		var empresa models.Empresa
		if err := database.DB.First(&empresa, empresaID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Empresa no encontrada")
		}
		if empresa.LogoPath == "" {
			return fiber.NewError(fiber.StatusNotFound, "La empresa no tiene logotipo")
		}

		ruta := filepath.Join(basePath, empresa.LogoPath)
		empresa.LogoPath = ""
		if err := database.DB.Save(&empresa).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la empresa")
		}
		os.Remove(ruta)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
