package infra

import (
	"fmt"
	"os"

	"grifopos/internal/model"

	"gopkg.in/yaml.v3"
)

// LoadTopologia reads the station's island layout from a YAML file.
func LoadTopologia(path string) (model.Topologia, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Topologia{}, fmt.Errorf("reading topology %s: %w", path, err)
	}
	return ParseTopologia(data)
}

// ParseTopologia decodes and validates a topology document. Every island needs
// a unique id and every dispenser a product.
func ParseTopologia(data []byte) (model.Topologia, error) {
	var t model.Topologia
	if err := yaml.Unmarshal(data, &t); err != nil {
		return model.Topologia{}, fmt.Errorf("parsing topology: %w", err)
	}

	vistas := map[string]bool{}
	for _, isla := range t.Islas {
		if isla.ID == "" {
			return model.Topologia{}, fmt.Errorf("isla sin id")
		}
		if vistas[isla.ID] {
			return model.Topologia{}, fmt.Errorf("isla %q duplicada", isla.ID)
		}
		vistas[isla.ID] = true

		claves := map[string]bool{}
		for _, cara := range isla.Caras {
			for _, s := range cara.Surtidores {
				if s.Producto == "" {
					return model.Topologia{}, fmt.Errorf("isla %q surtidor %s-%s sin producto", isla.ID, cara.Nombre, s.Codigo)
				}
				clave := model.ClaveMedidor(cara.Nombre, s.Codigo)
				if claves[clave] {
					return model.Topologia{}, fmt.Errorf("isla %q surtidor %s duplicado", isla.ID, clave)
				}
				claves[clave] = true
			}
		}
	}
	return t, nil
}
