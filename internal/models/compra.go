package models

import "time"

type MetodoPago string

const (
	MetodoEfectivo      MetodoPago = "efectivo"
	MetodoTarjeta       MetodoPago = "tarjeta"
	MetodoTransferencia MetodoPago = "transferencia"
	MetodoCredito       MetodoPago = "credito"
)

// Compra - encabezado de una compra a proveedor. Los totales se calculan a
// partir de los detalles y se redondean a pesos enteros antes de persistir.
// Una compra nunca se edita ni se elimina.
type Compra struct {
	ID             uint       `gorm:"primaryKey"`
	EmpresaID      uint       `gorm:"index;not null"`
	Empresa        Empresa    `gorm:"foreignKey:EmpresaID"`
	ProveedorID    uint       `gorm:"index;not null"`
	Proveedor      Proveedor  `gorm:"foreignKey:ProveedorID"`
	MetodoPago     MetodoPago `gorm:"size:20;not null"`
	Total          float64    `gorm:"not null"`
	TotalDescuento float64    `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Detalles []CompraDetalle `gorm:"foreignKey:CompraID"`
}

// CompraDetalle - renglón de una compra. El subtotal se recalcula en el
// servidor (cantidad*precio_unitario - cantidad*descuento), nunca se copia
// del carrito del cliente.
type CompraDetalle struct {
	ID                  uint     `gorm:"primaryKey"`
	CompraID            uint     `gorm:"index;not null"`
	ProductoID          uint     `gorm:"index;not null"`
	Producto            Producto `gorm:"foreignKey:ProductoID"`
	Cantidad            int      `gorm:"not null"`
	PrecioUnitario      float64  `gorm:"not null"`
	Descuento           float64  `gorm:"not null"` // descuento por unidad, en pesos
	DescuentoPorcentaje *float64 // informativo, no entra al cálculo
	Subtotal            float64  `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
