package models

import "time"

// Cliente - teléfono y correo únicos por empresa (NULL no cuenta como duplicado).
type Cliente struct {
	ID        uint    `gorm:"primaryKey"`
	EmpresaID uint    `gorm:"index;not null;uniqueIndex:idx_clientes_telefono;uniqueIndex:idx_clientes_correo"`
	Empresa   Empresa `gorm:"foreignKey:EmpresaID"`
	Nombre    string  `gorm:"size:150;not null"`
	Telefono  *string `gorm:"size:50;uniqueIndex:idx_clientes_telefono"`
	Correo    *string `gorm:"size:100;uniqueIndex:idx_clientes_correo"`
	Direccion string  `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
