package models

import "time"

// Marca - nombre único por empresa.
type Marca struct {
	ID        uint    `gorm:"primaryKey"`
	EmpresaID uint    `gorm:"index;not null;uniqueIndex:idx_marcas_nombre"`
	Empresa   Empresa `gorm:"foreignKey:EmpresaID"`
	Nombre    string  `gorm:"size:100;not null;uniqueIndex:idx_marcas_nombre"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Producto struct {
	ID           uint    `gorm:"primaryKey"`
	EmpresaID    uint    `gorm:"index;not null"`
	Empresa      Empresa `gorm:"foreignKey:EmpresaID"`
	MarcaID      *uint   `gorm:"index"`
	Marca        *Marca  `gorm:"foreignKey:MarcaID"`
	Nombre       string  `gorm:"size:150;not null"`
	Codigo       string  `gorm:"size:50;index"` // código de barras (opcional)
	PrecioCompra float64 `gorm:"not null"`
	PrecioVenta  float64 `gorm:"not null"`
	Stock        int     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
