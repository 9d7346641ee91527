package balance_test

import (
	"testing"

	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var precios = model.TablaPrecios{
	"REGULAR": d("10"),
	"PREMIUM": d("15"),
}

// turnoBase is one REGULAR dispenser from 100 to 110 → 10 gallons, S/100.
func turnoBase(entregas ...string) model.Turno {
	return model.Turno{
		ID:          uuid.New(),
		Fecha:       "2026-03-01",
		NombreTurno: model.TurnoManana,
		Medidores: model.Medidores{
			"A-1": {Inicio: d("100"), Fin: dp("110"), Producto: "REGULAR"},
		},
		Entregas: entregas,
	}
}

// ── Galones ──────────────────────────────────────────────────────────────────

func TestGalonesNuncaNegativos(t *testing.T) {
	cases := []struct {
		inicio, fin string
		want        string
	}{
		{"100", "110", "10"},
		{"100", "100", "0"},
		{"110", "100", "0"},
		{"100", "", "0"},
		{"100", "   ", "0"},
		{"100", "abc", "0"},
		{"abc", "5.5", "5.5"},
		{"0", "12.345", "12.345"},
	}
	for _, c := range cases {
		got := balance.GalonesRaw(c.inicio, c.fin)
		assert.False(t, got.IsNegative(), "inicio=%q fin=%q", c.inicio, c.fin)
		assert.True(t, d(c.want).Equal(got), "inicio=%q fin=%q got=%s", c.inicio, c.fin, got)
	}
	assert.True(t, balance.Galones(d("50"), nil).IsZero())
}

func TestParseMontoTolerante(t *testing.T) {
	assert.True(t, balance.ParseMonto("").IsZero())
	assert.True(t, balance.ParseMonto("S/10").IsZero())
	assert.True(t, balance.ParseMonto(" 12.50 ").Equal(d("12.5")))
	assert.Nil(t, balance.ParseOpcional("x"))
	require.NotNil(t, balance.ParseOpcional("0"))
}

// ── Escenarios de cuadre ─────────────────────────────────────────────────────

func TestCuadreExacto(t *testing.T) {
	b := balance.CalcularTurno(turnoBase("100"), precios)

	assert.Equal(t, "100", b.TotalVentas.String())
	assert.Equal(t, "100", b.EfectivoEsperado.String())
	assert.True(t, b.Diferencia.IsZero())
	assert.Equal(t, balance.Cuadrado, b.Estado())
	assert.Equal(t, "CUADRADO", b.Mensaje())
	assert.Equal(t, "10", b.VentasPorProducto["REGULAR"].Galones.String())
}

func TestCuadreFaltante(t *testing.T) {
	b := balance.CalcularTurno(turnoBase("90"), precios)

	assert.Equal(t, "-10", b.Diferencia.String())
	assert.Equal(t, balance.Falta, b.Estado())
	assert.Equal(t, "FALTA S/10.00", b.Mensaje())
}

func TestCuadreSobrante(t *testing.T) {
	b := balance.CalcularTurno(turnoBase("60", "45.5"), precios)

	assert.Equal(t, "5.5", b.Diferencia.String())
	assert.Equal(t, balance.Sobra, b.Estado())
	assert.Equal(t, "ENTREGASTE DE MÁS S/5.50", b.Mensaje())
}

func TestCreditoValorListaCompleto(t *testing.T) {
	tr := turnoBase("50")
	tr.Creditos = model.Lista[model.Credito]{{ID: uuid.New(), Producto: "REGULAR", Galones: d("5")}}

	b := balance.CalcularTurno(tr, precios)
	assert.Equal(t, "50", b.TotalCreditos.String())
	assert.Equal(t, "50", b.EfectivoEsperado.String())
	assert.True(t, b.Diferencia.IsZero())
	assert.Equal(t, "5", b.GalonesPrestados().String())
	assert.Equal(t, "5", b.GalonesCobrados().String())
}

func TestDescuentoSoloMargen(t *testing.T) {
	tr := turnoBase()
	tr.Descuentos = model.Lista[model.Descuento]{
		{ID: uuid.New(), Producto: "REGULAR", Galones: d("5"), PrecioEspecial: d("8")},
		// special price above list never adds to sales
		{ID: uuid.New(), Producto: "REGULAR", Galones: d("2"), PrecioEspecial: d("12")},
	}

	b := balance.CalcularTurno(tr, precios)
	assert.Equal(t, "10", b.TotalDescuentos.String())
	assert.Equal(t, "90", b.EfectivoEsperado.String())
}

func TestAdelantoSumaAlCuadre(t *testing.T) {
	tr := turnoBase("70")
	tr.Adelantos = model.Lista[model.Adelanto]{{ID: uuid.New(), Monto: d("30")}}

	b := balance.CalcularTurno(tr, precios)
	assert.Equal(t, "100", b.EfectivoEsperado.String())
	assert.True(t, b.Diferencia.IsZero())
}

func TestBalonesGLP(t *testing.T) {
	tr := turnoBase("160")
	tr.Balones = model.Lista[model.Balon]{
		{ID: uuid.New(), Tamano: "10kg", Cantidad: 2, Precio: d("30")},
	}

	b := balance.CalcularTurno(tr, precios)
	assert.Equal(t, "60", b.VentasBalones.String())
	assert.Equal(t, "100", b.VentasMedidor.String())
	assert.Equal(t, "160", b.TotalVentas.String())
	_, enProductos := b.VentasPorProducto["10kg"]
	assert.False(t, enProductos)
	assert.True(t, b.Diferencia.IsZero())
}

func TestPrecioFaltanteCuentaCero(t *testing.T) {
	tr := turnoBase()
	tr.Medidores["B-1"] = model.Medidor{Inicio: d("0"), Fin: dp("4"), Producto: "DIESEL"}

	b := balance.CalcularTurno(tr, precios)
	assert.Equal(t, "100", b.TotalVentas.String())
	assert.Equal(t, []string{"DIESEL"}, b.ProductosSinPrecio)
	assert.Equal(t, "14", b.TotalGalones.String())
}

func TestTurnoVacioFaltaTodo(t *testing.T) {
	b := balance.CalcularTurno(turnoBase(), precios)
	assert.Equal(t, "-100", b.Diferencia.String())
}

func TestEntregasNoNumericasCuentanCero(t *testing.T) {
	b := balance.CalcularTurno(turnoBase("40", "", "abc", "60"), precios)
	assert.Equal(t, "100", b.TotalEntregas.String())
	assert.True(t, b.Diferencia.IsZero())
}

func TestDescomposicionDiferencia(t *testing.T) {
	tr := turnoBase("12.34", "7")
	tr.Medidores["B-2"] = model.Medidor{Inicio: d("1000.125"), Fin: dp("1019.5"), Producto: "PREMIUM"}
	tr.Pagos = model.Lista[model.Pago]{{ID: uuid.New(), Metodo: model.MetodoYape, Monto: d("33.33")}}
	tr.Creditos = model.Lista[model.Credito]{{ID: uuid.New(), Producto: "PREMIUM", Galones: d("1.111")}}
	tr.Promociones = model.Lista[model.Promocion]{{ID: uuid.New(), Producto: "REGULAR", Galones: d("0.5")}}
	tr.Descuentos = model.Lista[model.Descuento]{{ID: uuid.New(), Producto: "PREMIUM", Galones: d("3"), PrecioEspecial: d("14.1")}}
	tr.Gastos = model.Lista[model.Gasto]{{ID: uuid.New(), Detalle: "agua", Monto: d("2.5")}}
	tr.Adelantos = model.Lista[model.Adelanto]{{ID: uuid.New(), Monto: d("20")}}

	b := balance.CalcularTurno(tr, precios)
	want := b.TotalEntregas.Add(b.TotalAdelantos).Sub(b.EfectivoEsperado)
	assert.True(t, want.Equal(b.Diferencia), "want=%s got=%s", want, b.Diferencia)
}

func TestToleranciaUnCentimo(t *testing.T) {
	assert.Equal(t, balance.Cuadrado, balance.EstadoDiferencia(d("0.009")))
	assert.Equal(t, balance.Cuadrado, balance.EstadoDiferencia(d("-0.009")))
	assert.Equal(t, balance.Falta, balance.EstadoDiferencia(d("-0.01")))
	assert.Equal(t, balance.Sobra, balance.EstadoDiferencia(d("0.01")))
	assert.Equal(t, "0.01", balance.Tolerancia().String())
}
