package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0"`
	Offset int `query:"offset" validate:"min=0"`
}

// Clamp aplica def si Limit no es positivo, recorta a max y corrige Offset negativo.
func (p *PageRequest) Clamp(def, max int) {
	switch {
	case p.Limit <= 0:
		p.Limit = def
	case p.Limit > max:
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
