package service

import (
	"context"
	"errors"

	"grifopos/internal/balance"
	"grifopos/internal/dto"
	"grifopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReporteService interface {
	Listar(ctx context.Context, filter dto.ReporteFilter) ([]dto.ReporteListItem, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error)
	ResumenDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error)
}

type reporteService struct {
	reportes repository.ReporteRepository
	turnos   repository.TurnoRepository
	precios  repository.PrecioRepository
}

func NewReporteService(reportes repository.ReporteRepository, turnos repository.TurnoRepository, precios repository.PrecioRepository) ReporteService {
	return &reporteService{reportes: reportes, turnos: turnos, precios: precios}
}

func (s *reporteService) Listar(ctx context.Context, filter dto.ReporteFilter) ([]dto.ReporteListItem, error) {
	reportes, err := s.reportes.List(ctx, filter.Fecha)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReporteListItem, 0, len(reportes))
	for i := range reportes {
		if filter.Tipo != "" && reportes[i].Tipo != filter.Tipo {
			continue
		}
		out = append(out, reporteToListItem(&reportes[i]))
	}
	return out, nil
}

func (s *reporteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error) {
	r, err := s.reportes.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReporteNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return reporteToResponse(r), nil
}

// ResumenDia aggregates the stored shifts of fecha. Counted cash comes from
// the day report when one exists, otherwise from the cash recorded on each
// shift by single-shift verifications.
func (s *reporteService) ResumenDia(ctx context.Context, fecha string) (*dto.ResumenDiaResponse, error) {
	turnos, err := s.turnos.ListByFecha(ctx, fecha)
	if err != nil {
		return nil, err
	}
	if len(turnos) == 0 {
		return nil, ErrDiaSinTurnos
	}
	precios, err := s.precios.Tabla(ctx)
	if err != nil {
		return nil, err
	}
	rep, err := opcional(s.reportes.FindByFecha(ctx, fecha))
	if err != nil {
		return nil, err
	}

	efectivo := map[string]decimal.Decimal{}
	if rep != nil {
		for grupo, monto := range rep.EfectivoPorGrupo {
			efectivo[grupo] = monto
		}
	} else {
		for _, t := range turnos {
			if t.AdminEfectivoRecibido != nil {
				efectivo[t.NombreTurno] = efectivo[t.NombreTurno].Add(*t.AdminEfectivoRecibido)
			}
		}
	}

	dia := balance.AgruparDia(fecha, turnos, precios, efectivo)
	resp := &dto.ResumenDiaResponse{
		ResumenDia:         dia,
		DiferenciaEfectivo: dto.Monto(dia.DiferenciaEfectivo()),
		GalonesCobrados:    dto.Galones(dia.GalonesCobrados()),
		Verificado:         rep != nil,
	}
	if rep != nil {
		id := rep.ID.String()
		resp.ReporteID = &id
	}
	return resp, nil
}
