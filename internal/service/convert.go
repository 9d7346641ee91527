package service

import (
	"sort"
	"time"

	"grifopos/internal/balance"
	"grifopos/internal/dto"
	"grifopos/internal/model"
	"grifopos/internal/verificacion"

	"github.com/shopspring/decimal"
)

func medidoresToResponse(m model.Medidores) []dto.MedidorResponse {
	claves := make([]string, 0, len(m))
	for k := range m {
		claves = append(claves, k)
	}
	sort.Strings(claves)
	out := make([]dto.MedidorResponse, 0, len(claves))
	for _, k := range claves {
		med := m[k]
		out = append(out, dto.MedidorResponse{
			Clave:    k,
			Producto: med.Producto,
			Inicio:   med.Inicio,
			Fin:      med.Fin,
			Galones:  dto.Galones(balance.Galones(med.Inicio, med.Fin)),
		})
	}
	return out
}

func turnoToResponse(t *model.Turno) *dto.TurnoResponse {
	resp := &dto.TurnoResponse{
		ID:          t.ID.String(),
		Secuencia:   t.Secuencia,
		Trabajador:  t.Trabajador,
		IslaID:      t.IslaID,
		Fecha:       t.Fecha,
		NombreTurno: t.NombreTurno,
		Estado:      t.Estado,
		HayArrastre: t.HayArrastre,
		Medidores:   medidoresToResponse(t.Medidores),
		Balones:     noNil(t.Balones),
		Pagos:       noNil(t.Pagos),
		Creditos:    noNil(t.Creditos),
		Promociones: noNil(t.Promociones),
		Descuentos:  noNil(t.Descuentos),
		Gastos:      noNil(t.Gastos),
		Adelantos:   noNil(t.Adelantos),
		Entregas:    noNil(t.Entregas),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.AdminEfectivoRecibido != nil {
		v := dto.Monto(*t.AdminEfectivoRecibido)
		resp.AdminEfectivoRecibido = &v
	}
	if t.ClosedAt != nil {
		s := t.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &s
	}
	return resp
}

// noNil keeps empty collections as [] in JSON.
func noNil[T any](l []T) []T {
	if l == nil {
		return []T{}
	}
	return l
}

func balanceToResponse(turnoID string, b balance.Balance) dto.BalanceResponse {
	productos := make([]string, 0, len(b.VentasPorProducto))
	for p := range b.VentasPorProducto {
		productos = append(productos, p)
	}
	sort.Strings(productos)
	ventas := make([]dto.VentaProductoResponse, 0, len(productos))
	for _, p := range productos {
		v := b.VentasPorProducto[p]
		ventas = append(ventas, dto.VentaProductoResponse{Producto: p, Galones: dto.Galones(v.Galones), Monto: dto.Monto(v.Monto)})
	}
	return dto.BalanceResponse{
		TurnoID:            turnoID,
		VentasPorProducto:  ventas,
		VentasMedidor:      dto.Monto(b.VentasMedidor),
		VentasBalones:      dto.Monto(b.VentasBalones),
		TotalVentas:        dto.Monto(b.TotalVentas),
		TotalGalones:       dto.Galones(b.TotalGalones),
		GalonesPrestados:   dto.Galones(b.GalonesPrestados()),
		GalonesCobrados:    dto.Galones(b.GalonesCobrados()),
		TotalPagos:         dto.Monto(b.TotalPagos),
		TotalCreditos:      dto.Monto(b.TotalCreditos),
		TotalPromociones:   dto.Monto(b.TotalPromociones),
		TotalDescuentos:    dto.Monto(b.TotalDescuentos),
		TotalGastos:        dto.Monto(b.TotalGastos),
		TotalAdelantos:     dto.Monto(b.TotalAdelantos),
		TotalEntregas:      dto.Monto(b.TotalEntregas),
		EfectivoEsperado:   dto.Monto(b.EfectivoEsperado),
		Diferencia:         dto.Monto(b.Diferencia),
		Estado:             b.Estado(),
		Mensaje:            b.Mensaje(),
		ProductosSinPrecio: b.ProductosSinPrecio,
	}
}

func sesionToResponse(s *verificacion.Sesion, precios model.TablaPrecios) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:        s.ID.String(),
		Tipo:      s.Tipo,
		Fecha:     s.Fecha,
		Items:     noNil(s.Items),
		Ediciones: noNil(s.Ediciones),
		Efectivo:  map[string]decimal.Decimal{},
		Notas:     s.Notas,
		Totales:   s.Totales(precios),
	}
	if s.ReporteID != nil {
		id := s.ReporteID.String()
		resp.ReporteID = &id
	}
	for grupo, monto := range s.Efectivo {
		resp.Efectivo[grupo] = dto.Monto(monto)
	}
	for i, t := range s.Turnos {
		w, _ := s.TurnoTrabajo(i)
		resp.Turnos = append(resp.Turnos, dto.SesionTurnoResponse{
			Idx:         i,
			TurnoID:     t.ID.String(),
			Trabajador:  t.Trabajador,
			IslaID:      t.IslaID,
			NombreTurno: t.NombreTurno,
			Corregido:   s.Corregido(i),
			Medidores:   medidoresToResponse(w.Medidores),
			Gastos:      noNil(w.Gastos),
			Entregas:    noNil(w.Entregas),
			Balance:     balanceToResponse(t.ID.String(), balance.CalcularTurno(w, precios)),
		})
	}
	return resp
}

func reporteToListItem(r *model.ReporteVerificado) dto.ReporteListItem {
	item := dto.ReporteListItem{
		ID:               r.ID.String(),
		Tipo:             r.Tipo,
		Fecha:            r.Fecha,
		Trabajador:       r.Trabajador,
		NombreTurno:      r.NombreTurno,
		TotalVentas:      dto.Monto(r.TotalVentas),
		EfectivoRecibido: dto.Monto(r.EfectivoRecibido),
		ItemsRevisados:   r.ItemsRevisados,
		TotalItems:       r.TotalItems,
		Corregido:        r.Corregido,
		VerificadoEn:     r.VerificadoEn.Format(time.RFC3339),
	}
	if r.TurnoID != nil {
		id := r.TurnoID.String()
		item.TurnoID = &id
	}
	return item
}

func reporteToResponse(r *model.ReporteVerificado) *dto.ReporteResponse {
	resp := &dto.ReporteResponse{
		ReporteListItem:    reporteToListItem(r),
		IslaID:             r.IslaID,
		Items:              noNil(r.Items),
		SubReportes:        noNil(r.SubReportes),
		EfectivoPorGrupo:   map[string]decimal.Decimal{},
		Notas:              r.Notas,
		TotalEsperado:      dto.Monto(r.TotalEsperado),
		DiferenciaEfectivo: dto.Monto(r.EfectivoRecibido.Sub(r.TotalEsperado)),
		TotalGalones:       dto.Galones(r.TotalGalones),
		GalonesPrestados:   dto.Galones(r.GalonesPrestados),
		GalonesCobrados:    dto.Galones(r.GalonesCobrados),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
	for grupo, monto := range r.EfectivoPorGrupo {
		resp.EfectivoPorGrupo[grupo] = dto.Monto(monto)
	}
	return resp
}
