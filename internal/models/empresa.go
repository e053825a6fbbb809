package models

import "time"

// Empresa - cada taller/negocio registrado es un inquilino independiente.
// Todas las demás tablas llevan EmpresaID y las consultas siempre filtran por él.
type Empresa struct {
	ID        uint   `gorm:"primaryKey"`
	Nombre    string `gorm:"size:150;not null;unique"`
	Direccion string `gorm:"size:255"`
	Telefono  string `gorm:"size:50"`
	LogoPath  string `gorm:"size:255"` // ruta relativa dentro del almacén de archivos
	CreatedAt time.Time
	UpdatedAt time.Time

	Usuarios []Usuario
}
