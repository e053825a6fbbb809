package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimerDetalleCompra(t *testing.T) {
	assert.Nil(t, PrimerDetalleCompra(nil))
	assert.Nil(t, PrimerDetalleCompra([]CompraDetalle{}))

	detalles := []CompraDetalle{{ID: 7}, {ID: 8}}
	primero := PrimerDetalleCompra(detalles)
	require.NotNil(t, primero)
	assert.Equal(t, uint(7), primero.ID)
	// Devuelve un puntero al elemento, no una copia.
	primero.Cantidad = 3
	assert.Equal(t, 3, detalles[0].Cantidad)
}

func TestPrimerMovimiento(t *testing.T) {
	assert.Nil(t, PrimerMovimiento(nil))

	movs := []MovimientoProveedor{{ID: 2, Tipo: MovimientoCargo}}
	primero := PrimerMovimiento(movs)
	require.NotNil(t, primero)
	assert.Equal(t, MovimientoCargo, primero.Tipo)
}

func TestPrimerDetalleVenta(t *testing.T) {
	assert.Nil(t, PrimerDetalleVenta([]VentaDetalle{}))

	primero := PrimerDetalleVenta([]VentaDetalle{{ID: 4}})
	require.NotNil(t, primero)
	assert.Equal(t, uint(4), primero.ID)
}
