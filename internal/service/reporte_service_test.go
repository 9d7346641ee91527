package service_test

import (
	"context"
	"testing"

	"grifopos/internal/dto"
	"grifopos/internal/model"
	"grifopos/internal/repository/repotest"
	"grifopos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumenDiaSinReporte(t *testing.T) {
	ana := cerrado(model.TurnoManana, "ana")
	efectivo := d("65")
	ana.AdminEfectivoRecibido = &efectivo
	luis := cerrado(model.TurnoTarde, "luis")

	turnos := repotest.NewTurnos(ana, luis)
	svc := service.NewReporteService(repotest.NewReportes(), turnos, repotest.NewPrecios(model.TablaPrecios{"REGULAR": d("10")}))

	resumen, err := svc.ResumenDia(context.Background(), fecha)
	require.NoError(t, err)
	assert.False(t, resumen.Verificado)
	assert.Nil(t, resumen.ReporteID)
	require.Len(t, resumen.Grupos, 2)
	assert.Equal(t, model.TurnoManana, resumen.Grupos[0].NombreTurno)

	// each shift expects 100 - 30 = 70
	assert.True(t, d("140").Equal(resumen.Esperado))
	assert.True(t, d("65").Equal(resumen.EfectivoRecibido))
	assert.True(t, d("-75").Equal(resumen.DiferenciaEfectivo))
	assert.True(t, d("20").Equal(resumen.GalonesCobrados))

	_, err = svc.ResumenDia(context.Background(), "2026-01-01")
	assert.ErrorIs(t, err, service.ErrDiaSinTurnos)
}

func TestResumenDiaUsaEfectivoDelReporte(t *testing.T) {
	ana := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(ana)
	ctx := context.Background()

	ses, err := e.svc.IniciarDia(ctx, fecha)
	require.NoError(t, err)
	_, err = e.svc.RegistrarEfectivo(ctx, sesionID(t, ses), dto.EfectivoRequest{Grupo: model.TurnoManana, Monto: "70"})
	require.NoError(t, err)
	rep, err := e.svc.Guardar(ctx, sesionID(t, ses))
	require.NoError(t, err)

	svc := service.NewReporteService(e.reportes, e.turnos, repotest.NewPrecios(model.TablaPrecios{"REGULAR": d("10")}))
	resumen, err := svc.ResumenDia(ctx, fecha)
	require.NoError(t, err)
	assert.True(t, resumen.Verificado)
	require.NotNil(t, resumen.ReporteID)
	assert.Equal(t, rep.ID, *resumen.ReporteID)
	assert.True(t, d("70").Equal(resumen.EfectivoRecibido))
	assert.True(t, resumen.DiferenciaEfectivo.IsZero())
}

func TestListarYObtenerReportes(t *testing.T) {
	reportes := repotest.NewReportes()
	ctx := context.Background()
	turnoID := uuid.New()
	reportes.Sembrar(
		&model.ReporteVerificado{Tipo: model.ReporteTurno, TurnoID: &turnoID, Fecha: fecha},
		&model.ReporteVerificado{Tipo: model.ReporteDia, Fecha: fecha},
		&model.ReporteVerificado{Tipo: model.ReporteDia, Fecha: "2026-03-02"},
	)

	svc := service.NewReporteService(reportes, repotest.NewTurnos(), repotest.NewPrecios(nil))

	delDia, err := svc.Listar(ctx, dto.ReporteFilter{Fecha: fecha})
	require.NoError(t, err)
	assert.Len(t, delDia, 2)

	dias, err := svc.Listar(ctx, dto.ReporteFilter{Tipo: model.ReporteDia})
	require.NoError(t, err)
	assert.Len(t, dias, 2)

	r, err := svc.Obtener(ctx, uuid.MustParse(delDia[0].ID))
	require.NoError(t, err)
	assert.Equal(t, delDia[0].ID, r.ID)

	_, err = svc.Obtener(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrReporteNoEncontrado)
}

func TestBalanceSigueAlResumenTrasCambioDePrecio(t *testing.T) {
	ana := cerrado(model.TurnoManana, "ana")
	turnos := repotest.NewTurnos(ana)
	precios := repotest.NewPrecios(model.TablaPrecios{"REGULAR": d("10")})
	cache := repotest.NewBalances()
	turnoSvc := service.NewTurnoService(turnos, precios, cache, topologia, &repotest.Encolador{})
	reporteSvc := service.NewReporteService(repotest.NewReportes(), turnos, precios)
	ctx := context.Background()

	antes, err := turnoSvc.Balance(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(antes.TotalVentas))
	_, cacheado := cache.Ultimo(ana.ID)
	require.True(t, cacheado)

	require.NoError(t, precios.Upsert(ctx, &model.Precio{Producto: "REGULAR", Valor: d("12")}))

	despues, err := turnoSvc.Balance(ctx, ana.ID)
	require.NoError(t, err)
	resumen, err := reporteSvc.ResumenDia(ctx, fecha)
	require.NoError(t, err)
	assert.True(t, d("120").Equal(despues.TotalVentas), despues.TotalVentas.String())
	assert.True(t, resumen.Ventas.Equal(despues.TotalVentas))
	assert.True(t, resumen.Esperado.Equal(despues.EfectivoEsperado))

	// the refreshed snapshot is served again until prices move
	snap, _ := cache.Ultimo(ana.ID)
	assert.True(t, d("120").Equal(snap.TotalVentas))
}
