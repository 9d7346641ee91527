package verificacion

import (
	"time"

	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConstruirReporte snapshots the session into a verified report. Re-verifying
// reuses the previous report's ID and VerificadoEn; everything else is rebuilt.
func ConstruirReporte(s *Sesion, precios model.TablaPrecios, ahora time.Time) model.ReporteVerificado {
	r := model.ReporteVerificado{
		ID:           uuid.New(),
		Tipo:         s.Tipo,
		Fecha:        s.Fecha,
		Notas:        s.Notas,
		VerificadoEn: ahora,
	}
	if s.ReporteID != nil {
		r.ID = *s.ReporteID
	}
	if s.VerificadoEn != nil {
		r.VerificadoEn = *s.VerificadoEn
	}

	var (
		esperado   decimal.Decimal
		detalles   []model.DetalleTurno
		corregido  bool
		revisados  int
		totalItems int
	)
	for i := range s.Turnos {
		d, b := s.detalle(i, precios)
		detalles = append(detalles, d)
		esperado = esperado.Add(b.EfectivoEsperado)
		corregido = corregido || d.Corregido
		revisados += d.ItemsRevisados
		totalItems += d.TotalItems
		r.TotalVentas = r.TotalVentas.Add(d.TotalVentas)
		r.TotalGalones = r.TotalGalones.Add(d.TotalGalones)
		r.GalonesPrestados = r.GalonesPrestados.Add(d.GalonesPrestados)
	}
	r.GalonesCobrados = r.TotalGalones.Sub(r.GalonesPrestados)
	r.TotalEsperado = esperado
	r.Corregido = corregido
	r.ItemsRevisados = revisados
	r.TotalItems = totalItems

	switch s.Tipo {
	case model.ReporteTurno:
		if len(detalles) > 0 {
			d := detalles[0]
			id := d.TurnoID
			r.TurnoID = &id
			r.Trabajador = d.Trabajador
			r.IslaID = d.IslaID
			r.NombreTurno = d.NombreTurno
			r.Items = d.Items
			r.EfectivoRecibido = d.EfectivoRecibido
		}
	case model.ReporteDia:
		r.SubReportes = detalles
		r.EfectivoPorGrupo = model.MapaMontos{}
		for _, grupo := range s.Grupos() {
			monto := s.EfectivoGrupo(grupo)
			r.EfectivoPorGrupo[grupo] = monto
			r.EfectivoRecibido = r.EfectivoRecibido.Add(monto)
		}
	}
	return r
}

func (s *Sesion) detalle(idx int, precios model.TablaPrecios) (model.DetalleTurno, balance.Balance) {
	t := s.Turnos[idx]
	b, _ := s.BalanceTrabajo(idx, precios)
	items := s.ItemsDeTurno(idx)
	revisados, total := contar(items)
	return model.DetalleTurno{
		TurnoID:          t.ID,
		Trabajador:       t.Trabajador,
		IslaID:           t.IslaID,
		NombreTurno:      t.NombreTurno,
		Items:            items,
		EfectivoRecibido: s.EfectivoGrupo(t.NombreTurno),
		Notas:            s.Notas,
		TotalVentas:      b.TotalVentas,
		TotalGalones:     b.TotalGalones,
		GalonesPrestados: b.GalonesPrestados(),
		GalonesCobrados:  b.GalonesCobrados(),
		ItemsRevisados:   revisados,
		TotalItems:       total,
		Corregido:        s.Corregido(idx),
	}, b
}
