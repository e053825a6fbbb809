package models

import "time"

type RolUsuario string

const (
	RolAdmin    RolUsuario = "admin"
	RolEmpleado RolUsuario = "empleado"
)

type Usuario struct {
	ID           uint       `gorm:"primaryKey"`
	EmpresaID    uint       `gorm:"index;not null"`
	Empresa      Empresa    `gorm:"foreignKey:EmpresaID"`
	Nombre       string     `gorm:"size:100;not null"`
	Correo       string     `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	Rol          RolUsuario `gorm:"size:20;not null"`
	Telefono     string     `gorm:"size:50"`
	Puesto       string     `gorm:"size:100"` // cargo del empleado (opcional)
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
