package audit_test

import (
	"testing"

	"taller-backend/internal/audit"
	"taller-backend/internal/models"
	"taller-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ultimoLog(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var log models.AuditLog
	require.NoError(t, db.Order("id desc").First(&log).Error)
	return log
}

func TestWriteLogGuardaEstadosComoJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")

	proveedor := testutil.SeedProveedor(t, db, empresa.ID, "Refaccionaria")

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EmpresaID:   &empresa.ID,
		UserID:      admin.ID,
		UserName:    admin.Nombre,
		EntityType:  "proveedor",
		EntityID:    proveedor.ID,
		Action:      models.AuditActionCreate,
		Description: "Proveedor agregado: Refaccionaria",
		Before:      nil,
		After:       proveedor,
	}))

	log := ultimoLog(t, db)
	assert.Equal(t, "proveedor", log.EntityType)
	assert.Equal(t, proveedor.ID, log.EntityID)
	// El jsonb exige el literal null en lugar de cadena vacía.
	assert.Equal(t, "null", log.BeforeData)
	assert.Contains(t, log.AfterData, "Refaccionaria")
	assert.False(t, log.IsUndone)
}

func TestUndoDeCreateEliminaLaEntidad(t *testing.T) {
	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	cliente := testutil.SeedCliente(t, db, empresa.ID, "Juan Pérez")

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EmpresaID:  &empresa.ID,
		UserID:     admin.ID,
		UserName:   admin.Nombre,
		EntityType: "cliente",
		EntityID:   cliente.ID,
		Action:     models.AuditActionCreate,
		After:      cliente,
	}))
	log := ultimoLog(t, db)

	require.NoError(t, audit.UndoLog(log.ID, admin.ID, admin.Nombre))

	var total int64
	require.NoError(t, db.Model(&models.Cliente{}).Count(&total).Error)
	assert.Zero(t, total)

	// El log original queda marcado y se agrega uno nuevo de reversión.
	var original models.AuditLog
	require.NoError(t, db.First(&original, log.ID).Error)
	assert.True(t, original.IsUndone)

	nuevo := ultimoLog(t, db)
	assert.Equal(t, models.AuditActionUndo, nuevo.Action)
	assert.True(t, nuevo.Undone)
}

func TestUndoDeUpdateRestauraElEstadoAnterior(t *testing.T) {
	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	proveedor := testutil.SeedProveedor(t, db, empresa.ID, "Nombre viejo")

	before := proveedor
	proveedor.Nombre = "Nombre nuevo"
	require.NoError(t, db.Save(&proveedor).Error)

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EmpresaID:  &empresa.ID,
		UserID:     admin.ID,
		UserName:   admin.Nombre,
		EntityType: "proveedor",
		EntityID:   proveedor.ID,
		Action:     models.AuditActionUpdate,
		Before:     before,
		After:      proveedor,
	}))
	log := ultimoLog(t, db)

	require.NoError(t, audit.UndoLog(log.ID, admin.ID, admin.Nombre))

	var restaurado models.Proveedor
	require.NoError(t, db.First(&restaurado, proveedor.ID).Error)
	assert.Equal(t, "Nombre viejo", restaurado.Nombre)
}

func TestUndoNoSeAplicaDosVeces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	cliente := testutil.SeedCliente(t, db, empresa.ID, "Juan Pérez")

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EmpresaID:  &empresa.ID,
		UserID:     admin.ID,
		UserName:   admin.Nombre,
		EntityType: "cliente",
		EntityID:   cliente.ID,
		Action:     models.AuditActionCreate,
		After:      cliente,
	}))
	log := ultimoLog(t, db)

	require.NoError(t, audit.UndoLog(log.ID, admin.ID, admin.Nombre))
	assert.Error(t, audit.UndoLog(log.ID, admin.ID, admin.Nombre))
}

func TestUndoDeCompraNoEsReversible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	empresa, admin := testutil.SeedEmpresaConAdmin(t, db, "taller-centro")
	proveedor := testutil.SeedProveedor(t, db, empresa.ID, "Refaccionaria")

	compra := models.Compra{EmpresaID: empresa.ID, ProveedorID: proveedor.ID, MetodoPago: models.MetodoCredito, Total: 500}
	require.NoError(t, db.Create(&compra).Error)

	require.NoError(t, audit.WriteLog(audit.LogOptions{
		EmpresaID:  &empresa.ID,
		UserID:     admin.ID,
		UserName:   admin.Nombre,
		EntityType: "compra",
		EntityID:   compra.ID,
		Action:     models.AuditActionCreate,
		After:      compra,
	}))
	log := ultimoLog(t, db)

	// El historial de compras y el ledger son append-only.
	require.Error(t, audit.UndoLog(log.ID, admin.ID, admin.Nombre))

	var total int64
	require.NoError(t, db.Model(&models.Compra{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}
