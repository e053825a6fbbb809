package models

import "time"

type Proveedor struct {
	ID        uint    `gorm:"primaryKey"`
	EmpresaID uint    `gorm:"index;not null"`
	Empresa   Empresa `gorm:"foreignKey:EmpresaID"`
	Nombre    string  `gorm:"size:200;not null"`
	Telefono  *string `gorm:"size:50"`
	Correo    *string `gorm:"size:100"`
	Direccion string  `gorm:"size:255"`
	Activo    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
