package models

import "time"

type EstadoServicio string

const (
	EstadoRecibido     EstadoServicio = "recibido"
	EstadoEnReparacion EstadoServicio = "en_reparacion"
	EstadoListo        EstadoServicio = "listo"
	EstadoEntregado    EstadoServicio = "entregado"
)

// Servicio - orden de reparación en el taller.
type Servicio struct {
	ID           uint           `gorm:"primaryKey"`
	EmpresaID    uint           `gorm:"index;not null"`
	Empresa      Empresa        `gorm:"foreignKey:EmpresaID"`
	ClienteID    uint           `gorm:"index;not null"`
	Cliente      Cliente        `gorm:"foreignKey:ClienteID"`
	Equipo       string         `gorm:"size:150;not null"` // qué se recibe (ej. "Laptop HP 15")
	Falla        string         `gorm:"size:500;not null"` // falla reportada por el cliente
	Diagnostico  string         `gorm:"size:500"`
	Estado       EstadoServicio `gorm:"size:20;not null;default:recibido"`
	Costo        float64        `gorm:"not null;default:0"` // presupuesto estimado
	Anticipo     float64        `gorm:"not null;default:0"`
	FechaEntrega *time.Time     // cuándo se entregó al cliente
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
