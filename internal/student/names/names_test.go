package names

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type NamesSuite struct {
	suite.Suite
}

func TestNamesSuite(t *testing.T) {
	suite.Run(t, new(NamesSuite))
}

func (s *NamesSuite) TestSplitRuleTable() {
	cases := []struct {
		name     string
		raw      string
		nombre   string
		apellido string
	}{
		{"single token", "Ana", "Ana", ""},
		{"two tokens", "Ana Lopez", "Ana", "Lopez"},
		{"three tokens", "Ana Maria Lopez", "Ana", "Maria Lopez"},
		{"four tokens plain", "Juan Carlos Perez Gomez", "Juan Carlos", "Perez Gomez"},
		{"four tokens joined surname", "Juan De La Cruz", "Juan", "De La Cruz"},
		{"five tokens plain keeps outer tokens", "Ana Maria Perez Gomez Diaz", "Ana", "Diaz"},
		{"five tokens joiner after given names", "Juan Carlos De La Torre", "Juan Carlos", "De La Torre"},
		{"five tokens joiner after first name", "Maria De Los Angeles Castro", "Maria De Los", "Angeles Castro"},
		{"six tokens plain drops middle", "Ana Maria Jose Elena Perez Gomez", "Ana Maria", "Perez Gomez"},
		{"six tokens double joined", "Maria De Jesus Von Der Berg", "Maria De Jesus", "Von Der Berg"},
		{"seven tokens joiner third", "Ana Maria De Jesus Perez Gomez Diaz", "Ana Maria De Jesus", "Perez Gomez Diaz"},
		{"eight tokens keeps last two as surname", "Ana Maria Jose Elena Rosa Perez Gomez Diaz", "Ana Maria Jose Elena Rosa Perez", "Gomez Diaz"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			parsed := Split(tc.raw)
			s.Equal(tc.nombre, parsed.Nombre)
			s.Equal(tc.apellido, parsed.Apellido)
		})
	}
}

func (s *NamesSuite) TestSplitCommaForm() {
	s.Run("comma means surname first", func() {
		parsed := Split("Lopez, Ana Maria")
		s.Equal("Ana Maria", parsed.Nombre)
		s.Equal("Lopez", parsed.Apellido)
	})

	s.Run("second comma discards the tail", func() {
		parsed := Split("Lopez, Ana Maria, Extra")
		s.Equal("Ana Maria", parsed.Nombre)
		s.Equal("Lopez", parsed.Apellido)
	})
}

func (s *NamesSuite) TestSplitCleansInput() {
	s.Run("strips emoji and collapses spaces", func() {
		parsed := Split("Juan\U0001F499   Perez\uFE0F")
		s.Equal("Juan", parsed.Nombre)
		s.Equal("Perez", parsed.Apellido)
	})

	s.Run("empty input yields empty fields", func() {
		s.Equal(ParsedName{}, Split("   "))
	})

	s.Run("uppercase input is normalized", func() {
		parsed := Split("JUAN CARLOS PEREZ GOMEZ")
		s.Equal("Juan Carlos", parsed.Nombre)
		s.Equal("Perez Gomez", parsed.Apellido)
	})
}

func (s *NamesSuite) TestToNameCase() {
	s.Equal("Ana Maria", ToNameCase("ANA MARIA"))
	s.Equal("O'Brien", ToNameCase("o'brien"))
	s.Equal("Perez-Gomez", ToNameCase("PEREZ-GOMEZ"))
	s.Equal("", ToNameCase(""))
}

func (s *NamesSuite) TestFormatFull() {
	s.Equal("Juan Carlos Perez", FormatFull("  JUAN   carlos PEREZ "))
	s.Equal("", FormatFull("   "))
}
