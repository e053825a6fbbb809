package database

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tabla de traducción de violaciones de unicidad conocidas a mensajes para
// el operador. Cualquier otro error de la base usa el mensaje de respaldo.
var mensajesPorConstraint = map[string]string{
	"idx_clientes_telefono": "Ya existe un cliente con ese teléfono",
	"idx_clientes_correo":   "Ya existe un cliente con ese correo",
	"idx_marcas_nombre":     "Ya existe una marca con ese nombre",
	"uni_empresas_nombre":   "Ya existe una empresa con ese nombre",
	"uni_usuarios_correo":   "Ya existe un usuario con ese correo",
}

const codigoUniqueViolation = "23505"

// TraducirError convierte un error del driver en un fiber.Error legible.
func TraducirError(err error, fallback string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codigoUniqueViolation {
		if msg, ok := mensajesPorConstraint[pgErr.ConstraintName]; ok {
			return fiber.NewError(fiber.StatusConflict, msg)
		}
		return fiber.NewError(fiber.StatusConflict, "Ya existe un registro con esos datos")
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
