package balance_test

import (
	"testing"

	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var islaNorte = model.Isla{
	ID:     "isla-1",
	Nombre: "Isla Norte",
	Caras: []model.Cara{
		{Nombre: "A", Surtidores: []model.Surtidor{{Codigo: "1", Producto: "REGULAR"}, {Codigo: "2", Producto: "PREMIUM"}}},
		{Nombre: "B", Surtidores: []model.Surtidor{{Codigo: "1", Producto: "REGULAR"}}},
	},
}

func TestArrastreIslaSinHistorial(t *testing.T) {
	arr := balance.MedidoresArrastre(nil, "isla-1")
	assert.Empty(t, arr)

	medidores, hay := balance.SembrarMedidores(islaNorte, arr)
	assert.False(t, hay)
	require.Len(t, medidores, 3)
	for _, m := range medidores {
		assert.True(t, m.Inicio.IsZero())
		assert.Nil(t, m.Fin)
	}
	assert.Equal(t, "PREMIUM", medidores["A-2"].Producto)
}

func TestArrastreContinuidad(t *testing.T) {
	previo := model.Turno{
		IslaID:    "isla-1",
		Secuencia: 4,
		Estado:    model.EstadoCerrado,
		Medidores: model.Medidores{
			"A-1": {Inicio: d("100"), Fin: dp("150.5"), Producto: "REGULAR"},
			"A-2": {Inicio: d("20"), Fin: nil, Producto: "PREMIUM"},
			"B-1": {Inicio: d("7"), Fin: dp("9"), Producto: "REGULAR"},
		},
	}
	otraIsla := model.Turno{
		IslaID:    "isla-2",
		Secuencia: 9,
		Estado:    model.EstadoCerrado,
		Medidores: model.Medidores{"A-1": {Inicio: d("0"), Fin: dp("999"), Producto: "REGULAR"}},
	}

	arr := balance.MedidoresArrastre([]model.Turno{previo, otraIsla}, "isla-1")
	require.Len(t, arr, 3)
	assert.Equal(t, "150.5", arr["A-1"].Inicio.String())
	assert.True(t, arr["A-2"].Inicio.IsZero())
	assert.False(t, arr["A-2"].Heredado)

	medidores, hay := balance.SembrarMedidores(islaNorte, arr)
	assert.True(t, hay)
	assert.Equal(t, "150.5", medidores["A-1"].Inicio.String())
	assert.True(t, medidores["A-2"].Inicio.IsZero())
	assert.Equal(t, "9", medidores["B-1"].Inicio.String())
}

func TestArrastrePrefiereUltimoCerrado(t *testing.T) {
	cerradoViejo := model.Turno{IslaID: "isla-1", Secuencia: 1, Estado: model.EstadoCerrado,
		Medidores: model.Medidores{"A-1": {Fin: dp("10"), Producto: "REGULAR"}}}
	cerradoNuevo := model.Turno{IslaID: "isla-1", Secuencia: 3, Estado: model.EstadoCerrado,
		Medidores: model.Medidores{"A-1": {Fin: dp("30"), Producto: "REGULAR"}}}
	abierto := model.Turno{IslaID: "isla-1", Secuencia: 5, Estado: model.EstadoAbierto,
		Medidores: model.Medidores{"A-1": {Fin: dp("50"), Producto: "REGULAR"}}}

	arr := balance.MedidoresArrastre([]model.Turno{abierto, cerradoNuevo, cerradoViejo}, "isla-1")
	assert.Equal(t, "30", arr["A-1"].Inicio.String())

	// with nothing closed the most recent shift of any status wins
	arr = balance.MedidoresArrastre([]model.Turno{abierto}, "isla-1")
	assert.Equal(t, "50", arr["A-1"].Inicio.String())
}
