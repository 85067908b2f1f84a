package models

import (
	"strconv"
	"strings"
)

// Payload is a decoded upstream JSON document. The three UNEMI systems share
// no schema, so payloads stay loosely typed and are read through the Dig
// accessors below; typed extraction lives in the assemble package.
type Payload = any

// SearchResult holds the per-system outcome of the three-way document search.
// A nil slot means that system was unreachable or does not know the identity.
type SearchResult struct {
	SGA       Payload
	Posgrado  Payload
	Matricula Payload
}

// AcademicData is the bundle of the four SGA academic resources fetched for an
// authenticated student. All four are present or the fetch failed as a whole.
type AcademicData struct {
	HojaVida Payload
	Malla    Payload
	Horario  Payload
	Materias Payload
}

// StudentDataRequest is the normalized inbound request after flag coercion.
type StudentDataRequest struct {
	Documento     string
	Password      *string
	Public        bool
	Private       bool
	ResetPassword bool
}

// PublicRecord is the externally visible record. Every resolution path must be
// able to produce one; unresolved fields stay null.
type PublicRecord struct {
	UnemiID            *string  `json:"unemi_id"`
	Documento          string   `json:"documento"`
	NombreCompleto     *string  `json:"nombre_completo"`
	Nombres            *string  `json:"nombres"`
	Apellidos          *string  `json:"apellidos"`
	EsMujer            *bool    `json:"es_mujer"`
	EsHombre           *bool    `json:"es_hombre"`
	Usuario            *string  `json:"usuario"`
	Email              *string  `json:"email"`
	EmailInstitucional *string  `json:"email_institucional"`
	Password           *string  `json:"password"`
	EsAdmision         *bool    `json:"es_admision"`
	EsPregrado         *bool    `json:"es_pregrado"`
	Perfiles           []string `json:"perfiles"`
}

// PrivateRecord is populated only after a successful login and academic fetch.
// HojaVida and Malla carry the raw upstream payloads for downstream consumers;
// Materias mirrors the malla payload, matching the legacy contract.
type PrivateRecord struct {
	IDPerfil      *string `json:"id_perfil"`
	Carrera       *string `json:"carrera"`
	CarreraAlias  *string `json:"carrera_alias"`
	Periodo       *string `json:"periodo"`
	Telefono      *string `json:"telefono"`
	Telefono2     *string `json:"telefono2"`
	Nacimiento    *string `json:"nacimiento"`
	Email         *string `json:"email"`
	Facultad      *string `json:"facultad"`
	FacultadAlias *string `json:"facultad_alias"`
	FotoDocumento *string `json:"foto_documento"`
	UpdateAt      string  `json:"update_at"`
	HojaVida      Payload `json:"hoja_vida"`
	Malla         Payload `json:"malla"`
	Materias      Payload `json:"materias"`
}

// Result is the response envelope and the unit stored in the cache.
type Result struct {
	PublicData  PublicRecord   `json:"publicData"`
	PrivateData *PrivateRecord `json:"privateData,omitempty"`
}

// Dig walks a decoded JSON value. Path elements are either string map keys or
// int slice indexes. Returns nil as soon as the path cannot be followed.
func Dig(p Payload, path ...any) any {
	cur := p
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[key]
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return nil
			}
			cur = s[key]
		default:
			return nil
		}
	}
	return cur
}

// DigStr returns the string at path after Stringify, or "" when absent.
func DigStr(p Payload, path ...any) string {
	return Stringify(Dig(p, path...))
}

// DigBool returns the boolean at path, or nil when the value is absent, empty
// or not a boolean. Upstream systems sometimes send "" where a flag belongs.
func DigBool(p Payload, path ...any) *bool {
	v := Dig(p, path...)
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// Stringify renders a scalar JSON value the way the upstreams expect ids to
// round-trip: numbers without a decimal point when integral, everything else
// via its natural string form. Nil, empty and the literal "null"/"undefined"
// strings all collapse to "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "", "null", "undefined":
			return ""
		}
		return s
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Ptr returns a pointer to v; handy for building records with nullable fields.
func Ptr[T any](v T) *T { return &v }

// StrPtr converts a non-empty string to a pointer, empty to nil.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
