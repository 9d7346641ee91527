package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"grifopos/internal/dto"
	"grifopos/internal/model"
	"grifopos/internal/repository/repotest"
	"grifopos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type verifEnv struct {
	svc       service.VerificacionService
	turnos    *repotest.Turnos
	reportes  *repotest.Reportes
	sesiones  *repotest.Sesiones
	cache     *repotest.Balances
	encolador *repotest.Encolador
	ahora     time.Time
}

func newVerifEnv(turnos ...model.Turno) *verifEnv {
	e := &verifEnv{
		turnos:    repotest.NewTurnos(turnos...),
		reportes:  repotest.NewReportes(),
		sesiones:  repotest.NewSesiones(),
		cache:     repotest.NewBalances(),
		encolador: &repotest.Encolador{},
		ahora:     time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC),
	}
	precios := repotest.NewPrecios(model.TablaPrecios{"REGULAR": d("10")})
	e.svc = service.NewVerificacionService(e.turnos, e.reportes, precios, e.sesiones, e.cache, e.encolador,
		service.ConReloj(func() time.Time { return e.ahora }))
	return e
}

// cerrado is a closed shift selling S/100 of REGULAR with a S/30 card payment
// and S/70 handed in.
func cerrado(nombre, trabajador string) model.Turno {
	fin := d("110")
	return model.Turno{
		ID:          uuid.New(),
		Trabajador:  trabajador,
		IslaID:      "isla-1",
		Fecha:       fecha,
		NombreTurno: nombre,
		Estado:      model.EstadoCerrado,
		Medidores:   model.Medidores{"A-1": {Inicio: d("100"), Fin: &fin, Producto: "REGULAR"}},
		Pagos:       model.Lista[model.Pago]{{ID: uuid.New(), Metodo: model.MetodoTarjeta, Monto: d("30")}},
		Entregas:    model.Lista[string]{"70"},
	}
}

func sesionID(t *testing.T, s *dto.SesionResponse) uuid.UUID {
	t.Helper()
	return uuid.MustParse(s.ID)
}

// ── Inicio ───────────────────────────────────────────────────────────────────

func TestIniciarTurnoRequiereCerrado(t *testing.T) {
	abierto := cerrado(model.TurnoManana, "ana")
	abierto.Estado = model.EstadoAbierto
	e := newVerifEnv(abierto)
	ctx := context.Background()

	_, err := e.svc.IniciarTurno(ctx, abierto.ID)
	assert.ErrorIs(t, err, service.ErrTurnoNoCerrado)
	_, err = e.svc.IniciarTurno(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrTurnoNoEncontrado)
	assert.Zero(t, e.sesiones.Len())
}

func TestIniciarDiaRechazos(t *testing.T) {
	abierto := cerrado(model.TurnoTarde, "luis")
	abierto.Estado = model.EstadoAbierto
	e := newVerifEnv(cerrado(model.TurnoManana, "ana"), abierto)
	ctx := context.Background()

	_, err := e.svc.IniciarDia(ctx, "2026-02-28")
	assert.ErrorIs(t, err, service.ErrDiaSinTurnos)
	_, err = e.svc.IniciarDia(ctx, fecha)
	assert.ErrorIs(t, err, service.ErrDiaConTurnosAbiertos)
}

// ── Turno ────────────────────────────────────────────────────────────────────

func TestGuardarTurnoEscribeCorrecciones(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()

	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	id := sesionID(t, ses)
	assert.Len(t, ses.Items, 1)

	toggle, err := e.svc.Alternar(ctx, id, tr.Pagos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.Confirmado, toggle.Verificado)

	ses, err = e.svc.EditarMedidor(ctx, id, dto.EditarMedidorRequest{TurnoIdx: 0, Clave: "A-1", Fin: "111"})
	require.NoError(t, err)
	assert.True(t, ses.Turnos[0].Corregido)
	assert.True(t, d("110").Equal(ses.Turnos[0].Balance.TotalVentas))

	_, err = e.svc.RegistrarEfectivo(ctx, id, dto.EfectivoRequest{Monto: "80"})
	require.NoError(t, err)
	_, err = e.svc.ActualizarNotas(ctx, id, dto.NotasRequest{Notas: " revisado "})
	require.NoError(t, err)

	rep, err := e.svc.Guardar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReporteTurno, rep.Tipo)
	assert.Equal(t, 1, rep.ItemsRevisados)
	assert.Equal(t, 1, rep.TotalItems)
	assert.True(t, rep.Corregido)
	assert.True(t, d("80").Equal(rep.EfectivoRecibido))
	assert.Equal(t, "revisado", rep.Notas)
	assert.Equal(t, e.ahora.Format(time.RFC3339), rep.VerificadoEn)

	guardado, err := e.turnos.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, d("111").Equal(*guardado.Medidores["A-1"].Fin))
	assert.True(t, d("100").Equal(guardado.Medidores["A-1"].Inicio))
	require.NotNil(t, guardado.AdminEfectivoRecibido)
	assert.True(t, d("80").Equal(*guardado.AdminEfectivoRecibido))
	assert.Equal(t, model.EstadoCerrado, guardado.Estado)

	assert.Zero(t, e.sesiones.Len())
	assert.Equal(t, []uuid.UUID{tr.ID}, e.encolador.Encolados)
	_, err = e.svc.Obtener(ctx, id)
	assert.ErrorIs(t, err, service.ErrSesionNoEncontrada)
}

func TestGuardarSinCambiosNoTocaTurno(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()

	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	_, err = e.svc.VerificarTodo(ctx, sesionID(t, ses), dto.VerificarTodoRequest{Categoria: model.CategoriaPago})
	require.NoError(t, err)

	rep, err := e.svc.Guardar(ctx, sesionID(t, ses))
	require.NoError(t, err)
	assert.False(t, rep.Corregido)

	guardado, err := e.turnos.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Nil(t, guardado.AdminEfectivoRecibido)
	assert.Empty(t, e.encolador.Encolados)
}

func TestReverificarSobrescribeReporte(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()

	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	_, err = e.svc.Alternar(ctx, sesionID(t, ses), tr.Pagos[0].ID)
	require.NoError(t, err)
	primero, err := e.svc.Guardar(ctx, sesionID(t, ses))
	require.NoError(t, err)

	e.ahora = e.ahora.Add(2 * time.Hour)
	ses, err = e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, ses.ReporteID)
	assert.Equal(t, primero.ID, *ses.ReporteID)
	assert.Equal(t, model.Confirmado, ses.Items[0].Verificado)

	_, err = e.svc.Alternar(ctx, sesionID(t, ses), tr.Pagos[0].ID)
	require.NoError(t, err)
	segundo, err := e.svc.Guardar(ctx, sesionID(t, ses))
	require.NoError(t, err)

	assert.Equal(t, primero.ID, segundo.ID)
	assert.Equal(t, primero.VerificadoEn, segundo.VerificadoEn)
	assert.Equal(t, 0, segundo.ItemsRevisados)
	assert.Len(t, e.reportes.Todos(), 1)
}

func TestGuardarAdoptaReporteConcurrente(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()

	a, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	b, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)

	ra, err := e.svc.Guardar(ctx, sesionID(t, a))
	require.NoError(t, err)
	rb, err := e.svc.Guardar(ctx, sesionID(t, b))
	require.NoError(t, err)

	assert.Equal(t, ra.ID, rb.ID)
	assert.Len(t, e.reportes.Todos(), 1)
}

func TestMutacionesInvalidas(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()
	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	id := sesionID(t, ses)

	_, err = e.svc.Alternar(ctx, id, uuid.New())
	assert.ErrorIs(t, err, service.ErrItemNoEncontrado)
	_, err = e.svc.EditarMedidor(ctx, id, dto.EditarMedidorRequest{Clave: "Z-1", Fin: "5"})
	assert.ErrorIs(t, err, service.ErrMedidorNoExiste)
	_, err = e.svc.EditarMedidor(ctx, id, dto.EditarMedidorRequest{TurnoIdx: 3, Clave: "A-1", Fin: "5"})
	assert.ErrorIs(t, err, service.ErrItemInvalido)
	_, err = e.svc.RegistrarEfectivo(ctx, id, dto.EfectivoRequest{Monto: "-5"})
	assert.ErrorIs(t, err, service.ErrItemInvalido)
	// called without handler validation, a bad id is an error, not a panic
	assert.NotPanics(t, func() {
		_, err = e.svc.ReemplazarGastos(ctx, id, dto.EditarGastosRequest{Gastos: []dto.GastoRequest{{ID: "no-es-uuid", Detalle: "taxi", Monto: "5"}}})
	})
	assert.ErrorIs(t, err, service.ErrItemInvalido)
	_, err = e.svc.VerificarTodo(ctx, id, dto.VerificarTodoRequest{Categoria: model.CategoriaGasto})
	assert.ErrorIs(t, err, service.ErrCategoriaInvalida)
	_, err = e.svc.Alternar(ctx, uuid.New(), tr.Pagos[0].ID)
	assert.ErrorIs(t, err, service.ErrSesionNoEncontrada)
}

func TestCorregirItem(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()
	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	id := sesionID(t, ses)

	_, err = e.svc.Alternar(ctx, id, tr.Pagos[0].ID)
	require.NoError(t, err)
	monto := "35"
	ses, err = e.svc.Corregir(ctx, id, tr.Pagos[0].ID, dto.CorregirItemRequest{Monto: &monto})
	require.NoError(t, err)

	require.Len(t, ses.Items, 1)
	assert.Equal(t, tr.Pagos[0].ID, ses.Items[0].ID)
	assert.Equal(t, model.Confirmado, ses.Items[0].Verificado)
	assert.True(t, d("35").Equal(ses.Items[0].Monto))
	assert.True(t, ses.Turnos[0].Corregido)

	rep, err := e.svc.Guardar(ctx, id)
	require.NoError(t, err)
	assert.True(t, rep.Corregido)
	guardado, err := e.turnos.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, d("30").Equal(guardado.Pagos[0].Monto), "item corrections stay in the report")
}

func TestDescartarNoTocaTurno(t *testing.T) {
	tr := cerrado(model.TurnoManana, "ana")
	e := newVerifEnv(tr)
	ctx := context.Background()
	ses, err := e.svc.IniciarTurno(ctx, tr.ID)
	require.NoError(t, err)
	id := sesionID(t, ses)

	_, err = e.svc.ReemplazarEntregas(ctx, id, dto.EditarEntregasRequest{Entregas: []string{"1"}})
	require.NoError(t, err)
	require.NoError(t, e.svc.Descartar(ctx, id))
	assert.ErrorIs(t, e.svc.Descartar(ctx, id), service.ErrSesionNoEncontrada)

	guardado, err := e.turnos.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"70"}, []string(guardado.Entregas))
	assert.Empty(t, e.reportes.Todos())
}

// ── Día ──────────────────────────────────────────────────────────────────────

func TestGuardarDia(t *testing.T) {
	ana := cerrado(model.TurnoManana, "ana")
	rosa := cerrado(model.TurnoManana, "rosa")
	rosa.IslaID = "isla-2"
	luis := cerrado(model.TurnoTarde, "luis")
	e := newVerifEnv(luis, ana, rosa)
	ctx := context.Background()

	ses, err := e.svc.IniciarDia(ctx, fecha)
	require.NoError(t, err)
	id := sesionID(t, ses)
	require.Len(t, ses.Turnos, 3)
	assert.Equal(t, model.TurnoManana, ses.Turnos[0].NombreTurno)
	assert.Equal(t, model.TurnoTarde, ses.Turnos[2].NombreTurno)

	idx := 0
	_, err = e.svc.VerificarTodo(ctx, id, dto.VerificarTodoRequest{Categoria: model.CategoriaPago, TurnoIdx: &idx})
	require.NoError(t, err)
	_, err = e.svc.RegistrarEfectivo(ctx, id, dto.EfectivoRequest{Grupo: model.TurnoManana, Monto: "140"})
	require.NoError(t, err)
	_, err = e.svc.RegistrarEfectivo(ctx, id, dto.EfectivoRequest{Grupo: "Extra", Monto: "1"})
	assert.ErrorIs(t, err, service.ErrItemInvalido)

	rep, err := e.svc.Guardar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ReporteDia, rep.Tipo)
	assert.Len(t, rep.SubReportes, 3)
	assert.Equal(t, 1, rep.ItemsRevisados)
	assert.Equal(t, 3, rep.TotalItems)
	assert.True(t, d("140").Equal(rep.EfectivoPorGrupo[model.TurnoManana]))
	assert.True(t, rep.EfectivoPorGrupo[model.TurnoTarde].IsZero())
	assert.True(t, d("140").Equal(rep.EfectivoRecibido))

	// every shift of the counted group carries the group's cash
	for _, tid := range []uuid.UUID{ana.ID, rosa.ID} {
		g, err := e.turnos.FindByID(ctx, tid)
		require.NoError(t, err)
		require.NotNil(t, g.AdminEfectivoRecibido)
		assert.True(t, d("140").Equal(*g.AdminEfectivoRecibido))
	}
	tarde, err := e.turnos.FindByID(ctx, luis.ID)
	require.NoError(t, err)
	assert.Nil(t, tarde.AdminEfectivoRecibido)
	assert.ElementsMatch(t, []uuid.UUID{ana.ID, rosa.ID}, e.encolador.Encolados)
}

func TestGuardarDiaFallidoConservaSesion(t *testing.T) {
	ana := cerrado(model.TurnoManana, "ana")
	luis := cerrado(model.TurnoTarde, "luis")
	e := newVerifEnv(ana, luis)
	ctx := context.Background()
	e.turnos.FallarUpdate[luis.ID] = errors.New("conexión perdida")

	ses, err := e.svc.IniciarDia(ctx, fecha)
	require.NoError(t, err)
	id := sesionID(t, ses)
	_, err = e.svc.RegistrarEfectivo(ctx, id, dto.EfectivoRequest{Grupo: model.TurnoTarde, Monto: "70"})
	require.NoError(t, err)

	_, err = e.svc.Guardar(ctx, id)
	require.Error(t, err)
	assert.Empty(t, e.reportes.Todos())
	assert.Equal(t, 1, e.sesiones.Len(), "a failed save can be retried")

	delete(e.turnos.FallarUpdate, luis.ID)
	_, err = e.svc.Guardar(ctx, id)
	require.NoError(t, err)
	assert.Len(t, e.reportes.Todos(), 1)
}
