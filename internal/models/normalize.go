package models

// Según la forma de la consulta, una relación uno-a-muchos puede llegar como
// lista de un elemento cuando en realidad se espera un solo objeto. Estos
// helpers colapsan ese resultado a un opcional, en lugar de repetir el
// chequeo ad hoc en cada punto de consumo.

// PrimerDetalleCompra devuelve el primer renglón de la lista, o nil si no hay.
func PrimerDetalleCompra(detalles []CompraDetalle) *CompraDetalle {
	if len(detalles) == 0 {
		return nil
	}
	return &detalles[0]
}

// PrimerMovimiento devuelve el primer movimiento de la lista, o nil si no hay.
func PrimerMovimiento(movs []MovimientoProveedor) *MovimientoProveedor {
	if len(movs) == 0 {
		return nil
	}
	return &movs[0]
}

// PrimerDetalleVenta devuelve el primer renglón de la venta, o nil si no hay.
func PrimerDetalleVenta(detalles []VentaDetalle) *VentaDetalle {
	if len(detalles) == 0 {
		return nil
	}
	return &detalles[0]
}
