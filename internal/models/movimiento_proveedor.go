package models

import "time"

type TipoMovimiento string

const (
	MovimientoCargo TipoMovimiento = "cargo"
	MovimientoAbono TipoMovimiento = "abono"
)

// MovimientoProveedor - registro inmutable del ledger de crédito con
// proveedores. Solo se insertan filas, nunca se actualizan ni se borran; el
// saldo del proveedor es siempre SUM(cargos) - SUM(abonos) calculado por la
// base de datos, jamás se guarda.
type MovimientoProveedor struct {
	ID          uint           `gorm:"primaryKey"`
	EmpresaID   uint           `gorm:"index;not null"`
	Empresa     Empresa        `gorm:"foreignKey:EmpresaID"`
	ProveedorID uint           `gorm:"index;not null"`
	Proveedor   Proveedor      `gorm:"foreignKey:ProveedorID"`
	CompraID    *uint          `gorm:"index"` // solo para cargos originados por una compra
	Tipo        TipoMovimiento `gorm:"size:10;not null"`
	Monto       float64        `gorm:"not null"` // siempre positivo
	MetodoPago  MetodoPago     `gorm:"size:20;not null"`
	Descripcion string         `gorm:"size:255"`
	CreatedAt   time.Time
}

func (MovimientoProveedor) TableName() string { return "movimientos_proveedor" }
