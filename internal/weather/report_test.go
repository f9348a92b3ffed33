package weather

import (
	"strings"
	"testing"

	"github.com/gometeo/weatherbot/internal/model"
)

func sampleConditions() *model.Conditions {
	return &model.Conditions{
		Place:       "London",
		Description: "пасмурно",
		Temp:        5.23,
		FeelsLike:   1.7,
		Pressure:    1013,
		Humidity:    81,
		Visibility:  10000,
		WindSpeed:   4.5,
		WindDeg:     200,
		Sunrise:     1700000000,
		Sunset:      1700030000,
	}
}

func TestFormatReport(t *testing.T) {
	got := FormatReport(sampleConditions())

	want := "Пасмурно.\n" +
		"Температура 5.2 ℃, ощущается как 1.7 ℃.\n" +
		"Атмосферное давление 759.9 мм рт. ст.\n" +
		"Влажность 81 %.\n" +
		"Видимость 10000 метров.\n" +
		"Ветер 4.5 м/с Ю.\n" +
		"Восход солнца 01:13 МСК. Закат 09:33 МСК."

	if got != want {
		t.Errorf("FormatReport() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatReportLineOrder(t *testing.T) {
	lines := strings.Split(FormatReport(sampleConditions()), "\n")
	prefixes := []string{"Пасмурно", "Температура", "Атмосферное давление", "Влажность", "Видимость", "Ветер", "Восход солнца"}

	if len(lines) != len(prefixes) {
		t.Fatalf("got %d lines, want %d", len(lines), len(prefixes))
	}
	for i, p := range prefixes {
		if !strings.HasPrefix(lines[i], p) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], p)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ясно", "Ясно"},
		{"НЕБОЛЬШОЙ ДОЖДЬ", "Небольшой дождь"},
		{"clear sky", "Clear sky"},
		{"я", "Я"},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
