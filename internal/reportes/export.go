package reportes

import (
	"fmt"

	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reportes/compras/export?year=2026&month=8
// Descarga las compras del mes, con sus renglones, como archivo XLSX.
func ExportComprasXLSXHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		year, month, err := parseYearMonth(c)
		if err != nil {
			return err
		}
		start, end := rangoDelMes(year, month)

		var compras []models.Compra
		if err := database.DB.
			Preload("Proveedor").
			Preload("Detalles").
			Preload("Detalles.Producto").
			Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, start, end).
			Order("created_at ASC").
			Find(&compras).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron obtener las compras")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Compras"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Folio", "Fecha", "Proveedor", "Producto", "Cantidad", "Precio unitario", "Descuento", "Subtotal", "Total compra", "Método de pago"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		estilo, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		f.SetCellStyle(sheet, "A1", "J1", estilo)

		fila := 2
		for _, compra := range compras {
			proveedor := compra.Proveedor.Nombre
			for _, det := range compra.Detalles {
				producto := det.Producto.Nombre
				valores := []interface{}{
					compra.ID,
					compra.CreatedAt.Format("2006-01-02 15:04"),
					proveedor,
					producto,
					det.Cantidad,
					det.PrecioUnitario,
					det.Descuento,
					det.Subtotal,
					compra.Total,
					string(compra.MetodoPago),
				}
				for i, v := range valores {
					cell, _ := excelize.CoordinatesToCellName(i+1, fila)
					f.SetCellValue(sheet, cell, v)
				}
				fila++
			}
			if len(compra.Detalles) == 0 {
				f.SetCellValue(sheet, fmt.Sprintf("A%d", fila), compra.ID)
				f.SetCellValue(sheet, fmt.Sprintf("B%d", fila), compra.CreatedAt.Format("2006-01-02 15:04"))
				f.SetCellValue(sheet, fmt.Sprintf("C%d", fila), proveedor)
				f.SetCellValue(sheet, fmt.Sprintf("I%d", fila), compra.Total)
				f.SetCellValue(sheet, fmt.Sprintf("J%d", fila), string(compra.MetodoPago))
				fila++
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo")
		}

		nombre := fmt.Sprintf("compras_%04d_%02d.xlsx", year, month)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, nombre))
		return c.Send(buf.Bytes())
	}
}
