package reportes

import (
	"fmt"
	"time"

	"taller-backend/internal/auth"
	"taller-backend/internal/database"
	"taller-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ResumenItem struct {
	MetodoPago models.MetodoPago `json:"metodo_pago"`
	Total      float64           `json:"total"`
	Cuenta     int64             `json:"cuenta"`
}

type ResumenMensualResponse struct {
	EmpresaID uint          `json:"empresa_id"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Items     []ResumenItem `json:"items"`
	GranTotal float64       `json:"gran_total"`
}

type SeriePunto struct {
	Label   string  `json:"label"`
	Compras float64 `json:"compras"`
	Ventas  float64 `json:"ventas"`
}

type SerieDiariaResponse struct {
	EmpresaID uint         `json:"empresa_id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Points    []SeriePunto `json:"points"`
}

func parseYearMonth(c *fiber.Ctx) (int, int, error) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year y month son obligatorios")
	}

	var year, month int
	if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year inválido")
	}
	if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "month inválido")
	}
	return year, month, nil
}

func rangoDelMes(year, month int) (time.Time, time.Time) {
	loc := time.Now().Location()
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	return start, end
}

// GET /api/reportes/compras/mensual?year=2026&month=8
// Totales de compras del mes agrupados por método de pago.
func ResumenComprasMensualHandler() fiber.Handler {
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

		type row struct {
			MetodoPago string  `gorm:"column:metodo_pago"`
			Total      float64 `gorm:"column:total"`
			Cuenta     int64   `gorm:"column:cuenta"`
		}
		var rows []row

		if err := database.DB.Model(&models.Compra{}).
			Select("metodo_pago, SUM(total) as total, COUNT(*) as cuenta").
			Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, start, end).
			Group("metodo_pago").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen")
		}

		resp := ResumenMensualResponse{
			EmpresaID: empresaID,
			Year:      year,
			Month:     month,
			Items:     make([]ResumenItem, 0, len(rows)),
			GranTotal: 0,
		}
		for _, r := range rows {
			resp.Items = append(resp.Items, ResumenItem{
				MetodoPago: models.MetodoPago(r.MetodoPago),
				Total:      r.Total,
				Cuenta:     r.Cuenta,
			})
			resp.GranTotal += r.Total
		}

		return c.JSON(resp)
	}
}

// GET /api/reportes/ventas/mensual?year=2026&month=8
func ResumenVentasMensualHandler() fiber.Handler {
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

		type row struct {
			MetodoPago string  `gorm:"column:metodo_pago"`
			Total      float64 `gorm:"column:total"`
			Cuenta     int64   `gorm:"column:cuenta"`
		}
		var rows []row

		if err := database.DB.Model(&models.Venta{}).
			Select("metodo_pago, SUM(total) as total, COUNT(*) as cuenta").
			Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, start, end).
			Group("metodo_pago").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen")
		}

		resp := ResumenMensualResponse{
			EmpresaID: empresaID,
			Year:      year,
			Month:     month,
			Items:     make([]ResumenItem, 0, len(rows)),
			GranTotal: 0,
		}
		for _, r := range rows {
			resp.Items = append(resp.Items, ResumenItem{
				MetodoPago: models.MetodoPago(r.MetodoPago),
				Total:      r.Total,
				Cuenta:     r.Cuenta,
			})
			resp.GranTotal += r.Total
		}

		return c.JSON(resp)
	}
}

// GET /api/reportes/serie-diaria?days=30
// Serie día por día de totales de compras y ventas, para la gráfica del
// panel. Un punto por día aunque no haya operaciones.
func SerieDiariaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		empresaID, err := auth.EmpresaIDFromCtx(c)
		if err != nil {
			return err
		}

		days := 30
		if daysStr := c.Query("days"); daysStr != "" {
			if _, err := fmt.Sscan(daysStr, &days); err != nil || days <= 0 || days > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "days inválido")
			}
		}

		now := time.Now()
		loc := now.Location()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
		start := end.AddDate(0, 0, -days)

		comprasPorDia := make(map[string]float64)
		ventasPorDia := make(map[string]float64)

		type row struct {
			Dia   time.Time `gorm:"column:dia"`
			Total float64   `gorm:"column:total"`
		}

		var comprasRows []row
		if err := database.DB.Model(&models.Compra{}).
			Select("DATE(created_at) as dia, SUM(total) as total").
			Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, start, end).
			Group("DATE(created_at)").
			Scan(&comprasRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular la serie de compras")
		}
		for _, r := range comprasRows {
			comprasPorDia[r.Dia.Format("2006-01-02")] = r.Total
		}

		var ventasRows []row
		if err := database.DB.Model(&models.Venta{}).
			Select("DATE(created_at) as dia, SUM(total) as total").
			Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, start, end).
			Group("DATE(created_at)").
			Scan(&ventasRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular la serie de ventas")
		}
		for _, r := range ventasRows {
			ventasPorDia[r.Dia.Format("2006-01-02")] = r.Total
		}

		points := make([]SeriePunto, 0, days)
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			label := d.Format("2006-01-02")
			points = append(points, SeriePunto{
				Label:   label,
				Compras: comprasPorDia[label],
				Ventas:  ventasPorDia[label],
			})
		}

		return c.JSON(SerieDiariaResponse{
			EmpresaID: empresaID,
			From:      start.Format("2006-01-02"),
			To:        end.AddDate(0, 0, -1).Format("2006-01-02"),
			Points:    points,
		})
	}
}
