// Package assemble turns loosely-typed upstream payloads into the public and
// private record shapes. All knowledge of the three systems' field names and
// nesting lives here, so upstream schema drift stays in one place.
package assemble

import (
	"time"

	"unemigw/internal/student/models"
	"unemigw/internal/student/names"
	"unemigw/internal/student/token"
)

// -----------------------------------------------------------------------------
// Per-system field accessors
// -----------------------------------------------------------------------------

// Username resolves the login username: SGA wins, then posgrado, then
// matriculación. Empty means the identity is unknown everywhere.
func Username(sr models.SearchResult) string {
	if u := models.DigStr(sr.SGA, "data", "usuario"); u != "" {
		return u
	}
	if u := models.DigStr(sr.Posgrado, "user"); u != "" {
		return u
	}
	return models.DigStr(sr.Matricula, "aData", "username")
}

// UnemiID resolves the internal UNEMI id: SGA, then posgrado.
func UnemiID(sr models.SearchResult) *string {
	if id := models.DigStr(sr.SGA, "data", "id"); id != "" {
		return &id
	}
	return models.StrPtr(models.DigStr(sr.Posgrado, "id"))
}

// Email resolves the personal email: posgrado, then matriculación.
func Email(sr models.SearchResult) *string {
	if e := models.DigStr(sr.Posgrado, "email"); e != "" {
		return &e
	}
	return models.StrPtr(models.DigStr(sr.Matricula, "aData", "email"))
}

// InstitutionalEmail prefers matriculación's explicit field and falls back to
// the {username}@unemi.edu.ec convention.
func InstitutionalEmail(sr models.SearchResult, username string) *string {
	if e := models.DigStr(sr.Matricula, "aData", "email_institucional"); e != "" {
		return &e
	}
	if username != "" {
		return models.Ptr(username + "@unemi.edu.ec")
	}
	return nil
}

// RawFullName resolves the unparsed full-name string: SGA, then matriculación.
func RawFullName(sr models.SearchResult) string {
	if n := models.DigStr(sr.SGA, "data", "nombre_completo"); n != "" {
		return n
	}
	return models.DigStr(sr.Matricula, "aData", "nombre_completo")
}

// TempToken returns matriculación's temporary reset token, if any.
func TempToken(sr models.SearchResult) string {
	return models.DigStr(sr.Matricula, "aData", "temp_token")
}

// materiasPersona is the structured person sub-record buried in the
// enrolled-courses payload.
func materiasPersona(materias models.Payload) any {
	return models.Dig(materias, "data", "eMateriasAsignadas", 0, "matricula", "inscripcion", "persona")
}

// Gender resolves the two gender flags, preferring the person sub-record in
// the enrolled-courses payload over SGA's search response. Empty strings and
// missing values normalize to null.
func Gender(sr models.SearchResult, materias models.Payload) (esMujer, esHombre *bool) {
	persona := materiasPersona(materias)
	if b := models.DigBool(persona, "es_mujer"); b != nil {
		esMujer = b
	} else {
		esMujer = models.DigBool(sr.SGA, "data", "es_mujer")
	}
	if b := models.DigBool(persona, "es_hombre"); b != nil {
		esHombre = b
	} else {
		esHombre = models.DigBool(sr.SGA, "data", "es_hombre")
	}
	return esMujer, esHombre
}

// -----------------------------------------------------------------------------
// Public record builders
// -----------------------------------------------------------------------------

// NotFound is the terminal record for a document no system knows: everything
// null except the echoed document number.
func NotFound(documento string) models.PublicRecord {
	return models.PublicRecord{Documento: documento}
}

// FromSearch builds a public record from the three search payloads alone; no
// authenticated data is consulted.
func FromSearch(sr models.SearchResult, documento string) models.PublicRecord {
	username := Username(sr)
	raw := RawFullName(sr)
	esMujer, esHombre := Gender(sr, nil)

	rec := models.PublicRecord{
		UnemiID:            UnemiID(sr),
		Documento:          documento,
		NombreCompleto:     models.StrPtr(names.FormatFull(raw)),
		EsMujer:            esMujer,
		EsHombre:           esHombre,
		Usuario:            models.StrPtr(username),
		Email:              Email(sr),
		EmailInstitucional: InstitutionalEmail(sr, username),
	}
	if raw != "" {
		parsed := names.Split(raw)
		rec.Nombres = models.StrPtr(parsed.Nombre)
		rec.Apellidos = models.StrPtr(parsed.Apellido)
	}
	return rec
}

// Tagged returns a FromSearch record whose perfiles field carries a pending
// action marker ("ficha socioeconomica", "changepassword").
func Tagged(sr models.SearchResult, documento, tag string) models.PublicRecord {
	rec := FromSearch(sr, documento)
	rec.Perfiles = []string{tag}
	return rec
}

// Success builds the full public record after an authenticated academic
// fetch. Names come from the structured person sub-record when present,
// falling back to the parsed search name. password is what the caller should
// use going forward (nil when no working credential is known).
func Success(sr models.SearchResult, documento string, academic models.AcademicData, profiles []token.Profile, password *string) models.PublicRecord {
	username := Username(sr)
	esMujer, esHombre := Gender(sr, academic.Materias)

	rec := models.PublicRecord{
		UnemiID:            UnemiID(sr),
		Documento:          documento,
		EsMujer:            esMujer,
		EsHombre:           esHombre,
		Usuario:            models.StrPtr(username),
		Email:              Email(sr),
		EmailInstitucional: InstitutionalEmail(sr, username),
		Password:           password,
		EsAdmision:         models.DigBool(academic.Materias, "data", "es_admision"),
		EsPregrado:         models.DigBool(academic.Materias, "data", "es_pregrado"),
	}

	persona := materiasPersona(academic.Materias)
	if nombres := models.DigStr(persona, "nombres"); nombres != "" {
		ap1 := models.DigStr(persona, "apellido1")
		ap2 := models.DigStr(persona, "apellido2")
		apellidos := ap1
		if ap2 != "" {
			if apellidos != "" {
				apellidos += " "
			}
			apellidos += ap2
		}
		rec.Nombres = models.Ptr(names.ToNameCase(nombres))
		rec.Apellidos = models.StrPtr(names.ToNameCase(apellidos))
		rec.NombreCompleto = models.StrPtr(names.FormatFull(nombres + " " + apellidos))
	} else if raw := RawFullName(sr); raw != "" {
		parsed := names.Split(raw)
		rec.Nombres = models.StrPtr(parsed.Nombre)
		rec.Apellidos = models.StrPtr(parsed.Apellido)
		rec.NombreCompleto = models.StrPtr(names.FormatFull(raw))
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) > 0 {
		rec.Perfiles = ids
	}
	return rec
}

// -----------------------------------------------------------------------------
// Private record builder
// -----------------------------------------------------------------------------

// Private extracts the authenticated academic detail from the four fetched
// payloads. Paths are fixed per payload; every scalar normalizes empty /
// "null" / "undefined" to null.
func Private(academic models.AcademicData, perfilID string, now time.Time) *models.PrivateRecord {
	materias := academic.Materias
	persona := materiasPersona(materias)
	carrera := models.Dig(materias, "data", "eMateriasAsignadas", 0, "matricula", "inscripcion", "carrera")

	return &models.PrivateRecord{
		IDPerfil:      models.StrPtr(perfilID),
		Carrera:       models.StrPtr(models.DigStr(carrera, "display")),
		CarreraAlias:  models.StrPtr(models.DigStr(carrera, "alias")),
		Periodo:       models.StrPtr(models.DigStr(materias, "data", "eMateriasAsignadas", 0, "matricula", "nivel", "periodo", "display")),
		Telefono:      models.StrPtr(models.DigStr(persona, "telefono")),
		Telefono2:     models.StrPtr(models.DigStr(persona, "telefono2")),
		Nacimiento:    models.StrPtr(models.DigStr(materias, "data", "eMatricula", "inscripcion", "persona", "nacimiento")),
		Email:         models.StrPtr(models.DigStr(persona, "email")),
		Facultad:      models.StrPtr(models.DigStr(academic.Malla, "data", "eInscripcion", "coordinacion", "nombre")),
		FacultadAlias: models.StrPtr(models.DigStr(academic.Malla, "data", "eInscripcion", "coordinacion", "alias")),
		FotoDocumento: models.StrPtr(models.DigStr(academic.HojaVida, "data", "ePersona", "download_documento")),
		UpdateAt:      now.UTC().Format(time.RFC3339),
		HojaVida:      academic.HojaVida,
		Malla:         academic.Malla,
		Materias:      academic.Malla,
	}
}
