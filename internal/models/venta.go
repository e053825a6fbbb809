package models

import "time"

// Venta - venta de mostrador. El stock se descuenta con un UPDATE condicional
// por renglón (stock = stock - cantidad WHERE stock >= cantidad), la base de
// datos es quien garantiza que no se venda de más.
type Venta struct {
	ID         uint       `gorm:"primaryKey"`
	EmpresaID  uint       `gorm:"index;not null"`
	Empresa    Empresa    `gorm:"foreignKey:EmpresaID"`
	ClienteID  *uint      `gorm:"index"` // venta al público si es NULL
	Cliente    *Cliente   `gorm:"foreignKey:ClienteID"`
	MetodoPago MetodoPago `gorm:"size:20;not null"`
	Total      float64    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Detalles []VentaDetalle `gorm:"foreignKey:VentaID"`
}

type VentaDetalle struct {
	ID             uint     `gorm:"primaryKey"`
	VentaID        uint     `gorm:"index;not null"`
	ProductoID     uint     `gorm:"index;not null"`
	Producto       Producto `gorm:"foreignKey:ProductoID"`
	Cantidad       int      `gorm:"not null"`
	PrecioUnitario float64  `gorm:"not null"`
	Subtotal       float64  `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
