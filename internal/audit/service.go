package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"taller-backend/internal/database"
	"taller-backend/internal/models"
)

type LogOptions struct {
	EmpresaID   *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// Para jsonb de PostgreSQL hay que mandar el literal "null", no cadena vacía
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		EmpresaID:   opts.EmpresaID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el log de auditoría: %w", err)
	}

	return nil
}

// UndoLog revierte una operación registrada. Las compras y los movimientos
// del ledger de proveedores son inmutables, así que no son reversibles.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log no encontrado: %w", err)
	}

	if log.IsUndone {
		return fmt.Errorf("esta operación ya fue revertida")
	}

	switch log.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("no se pudo eliminar la entidad: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("no se pudo restaurar la entidad: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(log.EntityType, log.AfterData); err != nil {
			return fmt.Errorf("no se pudo recrear la entidad: %w", err)
		}

	default:
		return fmt.Errorf("este tipo de operación no se puede revertir")
	}

	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("no se pudo actualizar el log: %w", err)
	}

	undoLog := models.AuditLog{
		EmpresaID:   log.EmpresaID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Revertido: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el log de reversión: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "cliente":
		return database.DB.Delete(&models.Cliente{}, "id = ?", entityID).Error
	case "proveedor":
		return database.DB.Delete(&models.Proveedor{}, "id = ?", entityID).Error
	case "marca":
		return database.DB.Delete(&models.Marca{}, "id = ?", entityID).Error
	case "producto":
		return database.DB.Delete(&models.Producto{}, "id = ?", entityID).Error
	case "servicio":
		return database.DB.Delete(&models.Servicio{}, "id = ?", entityID).Error
	default:
		// compra, venta y movimiento_proveedor son append-only y no se revierten
		return fmt.Errorf("tipo de entidad no reversible: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "cliente":
		var cliente models.Cliente
		if err := json.Unmarshal([]byte(dataJSON), &cliente); err != nil {
			return err
		}
		cliente.ID = 0
		return database.DB.Create(&cliente).Error

	case "proveedor":
		var proveedor models.Proveedor
		if err := json.Unmarshal([]byte(dataJSON), &proveedor); err != nil {
			return err
		}
		proveedor.ID = 0
		return database.DB.Create(&proveedor).Error

	case "marca":
		var marca models.Marca
		if err := json.Unmarshal([]byte(dataJSON), &marca); err != nil {
			return err
		}
		marca.ID = 0
		return database.DB.Create(&marca).Error

	case "producto":
		var producto models.Producto
		if err := json.Unmarshal([]byte(dataJSON), &producto); err != nil {
			return err
		}
		producto.ID = 0
		return database.DB.Create(&producto).Error

	case "servicio":
		var servicio models.Servicio
		if err := json.Unmarshal([]byte(dataJSON), &servicio); err != nil {
			return err
		}
		servicio.ID = 0
		return database.DB.Create(&servicio).Error

	default:
		return fmt.Errorf("tipo de entidad no reversible: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "cliente":
		var cliente models.Cliente
		if err := json.Unmarshal([]byte(dataJSON), &cliente); err != nil {
			return err
		}
		return database.DB.Model(&models.Cliente{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"nombre":    cliente.Nombre,
			"telefono":  cliente.Telefono,
			"correo":    cliente.Correo,
			"direccion": cliente.Direccion,
		}).Error

	case "proveedor":
		var proveedor models.Proveedor
		if err := json.Unmarshal([]byte(dataJSON), &proveedor); err != nil {
			return err
		}
		return database.DB.Model(&models.Proveedor{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"nombre":    proveedor.Nombre,
			"telefono":  proveedor.Telefono,
			"correo":    proveedor.Correo,
			"direccion": proveedor.Direccion,
			"activo":    proveedor.Activo,
		}).Error

	case "marca":
		var marca models.Marca
		if err := json.Unmarshal([]byte(dataJSON), &marca); err != nil {
			return err
		}
		return database.DB.Model(&models.Marca{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"nombre": marca.Nombre,
		}).Error

	case "producto":
		var producto models.Producto
		if err := json.Unmarshal([]byte(dataJSON), &producto); err != nil {
			return err
		}
		return database.DB.Model(&models.Producto{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"nombre":        producto.Nombre,
			"codigo":        producto.Codigo,
			"marca_id":      producto.MarcaID,
			"precio_compra": producto.PrecioCompra,
			"precio_venta":  producto.PrecioVenta,
			"stock":         producto.Stock,
		}).Error

	case "servicio":
		var servicio models.Servicio
		if err := json.Unmarshal([]byte(dataJSON), &servicio); err != nil {
			return err
		}
		return database.DB.Model(&models.Servicio{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"equipo":        servicio.Equipo,
			"falla":         servicio.Falla,
			"diagnostico":   servicio.Diagnostico,
			"estado":        servicio.Estado,
			"costo":         servicio.Costo,
			"anticipo":      servicio.Anticipo,
			"fecha_entrega": servicio.FechaEntrega,
		}).Error

	default:
		return fmt.Errorf("tipo de entidad no reversible: %s", entityType)
	}
}
