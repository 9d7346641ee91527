package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"grifopos/internal/apierror"
	"grifopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

func init() {
	// report fields by their JSON/query name so clients can match them
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()).Con("json_invalido"))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()).Con("query_invalida"))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()).Con("validacion"))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, writing a 400 when it is not a uuid.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido: "+name).Con("id_invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// paramFecha reads a YYYY-MM-DD path parameter.
func paramFecha(c *gin.Context) (string, bool) {
	fecha := c.Param("fecha")
	if err := validate.Var(fecha, "required,datetime=2006-01-02"); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Fecha inválida, se espera YYYY-MM-DD").Con("fecha_invalida"))
		return "", false
	}
	return fecha, true
}

// erroresNegocio maps each business sentinel to its status and stable code.
// Anything not listed is a store failure.
var erroresNegocio = []struct {
	err    error
	status int
	codigo string
}{
	{service.ErrTurnoNoEncontrado, http.StatusNotFound, "turno_no_encontrado"},
	{service.ErrReporteNoEncontrado, http.StatusNotFound, "reporte_no_encontrado"},
	{service.ErrSesionNoEncontrada, http.StatusNotFound, "sesion_no_encontrada"},
	{service.ErrItemNoEncontrado, http.StatusNotFound, "item_no_encontrado"},
	{service.ErrDiaSinTurnos, http.StatusNotFound, "dia_sin_turnos"},

	{service.ErrIslaConTurnoAbierto, http.StatusConflict, "isla_con_turno_abierto"},
	{service.ErrTurnoDuplicado, http.StatusConflict, "turno_duplicado"},
	{service.ErrDiaCompleto, http.StatusConflict, "dia_completo"},
	{service.ErrTurnoNoAbierto, http.StatusConflict, "turno_no_abierto"},
	{service.ErrTurnoNoCerrado, http.StatusConflict, "turno_no_cerrado"},
	{service.ErrDiaConTurnosAbiertos, http.StatusConflict, "dia_con_turnos_abiertos"},

	{service.ErrIslaNoExiste, http.StatusBadRequest, "isla_no_existe"},
	{service.ErrCategoriaInvalida, http.StatusBadRequest, "categoria_invalida"},
	{service.ErrItemInvalido, http.StatusBadRequest, "item_invalido"},
	{service.ErrMedidorNoExiste, http.StatusBadRequest, "medidor_no_existe"},
	{service.ErrBalonSinGLP, http.StatusBadRequest, "balon_sin_glp"},
}

// responderError writes business errors as 4xx. Anything else goes to the
// ErrorHandler middleware, which answers an opaque 500.
func responderError(c *gin.Context, err error) {
	for _, e := range erroresNegocio {
		if errors.Is(err, e.err) {
			c.JSON(e.status, apierror.New(err.Error()).Con(e.codigo))
			return
		}
	}
	_ = c.Error(err)
}
