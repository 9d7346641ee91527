package model

// Isla is a static island of the station: faces, each with ordered dispensers
// bound to exactly one product. EsGLP islands also sell gas cylinders.
type Isla struct {
	ID     string `yaml:"id"      json:"id"`
	Nombre string `yaml:"nombre"  json:"nombre"`
	EsGLP  bool   `yaml:"es_glp"  json:"es_glp"`
	Caras  []Cara `yaml:"caras"   json:"caras"`
}

type Cara struct {
	Nombre     string     `yaml:"nombre"     json:"nombre"`
	Surtidores []Surtidor `yaml:"surtidores" json:"surtidores"`
}

type Surtidor struct {
	Codigo   string `yaml:"codigo"   json:"codigo"`
	Producto string `yaml:"producto" json:"producto"`
}

// ClaveMedidor builds the dispenser key used in Turno.Medidores.
func ClaveMedidor(cara, surtidor string) string {
	return cara + "-" + surtidor
}

// Medidores returns a fresh meter map for the island with every start at zero.
func (i Isla) Medidores() Medidores {
	m := Medidores{}
	for _, c := range i.Caras {
		for _, s := range c.Surtidores {
			m[ClaveMedidor(c.Nombre, s.Codigo)] = Medidor{Producto: s.Producto}
		}
	}
	return m
}

// Topologia is the full island layout of the station.
type Topologia struct {
	Islas []Isla `yaml:"islas" json:"islas"`
}

// Buscar returns the island with the given id.
func (t Topologia) Buscar(id string) (Isla, bool) {
	for _, i := range t.Islas {
		if i.ID == id {
			return i, true
		}
	}
	return Isla{}, false
}
