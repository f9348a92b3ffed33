package weather

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gometeo/weatherbot/internal/model"
)

// FormatReport собирает текст сводки погоды.
func FormatReport(c *model.Conditions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s.\n", capitalize(c.Description))
	fmt.Fprintf(&b, "Температура %.1f ℃, ощущается как %.1f ℃.\n", c.Temp, c.FeelsLike)
	fmt.Fprintf(&b, "Атмосферное давление %.1f мм рт. ст.\n", PressureMMHg(c.Pressure))
	fmt.Fprintf(&b, "Влажность %d %%.\n", c.Humidity)
	fmt.Fprintf(&b, "Видимость %d метров.\n", c.Visibility)
	fmt.Fprintf(&b, "Ветер %.1f м/с %s.\n", c.WindSpeed, WindDirection(c.WindDeg))
	fmt.Fprintf(&b, "Восход солнца %s МСК. Закат %s МСК.",
		Clock(c.Sunrise, moscowOffsetHours),
		Clock(c.Sunset, moscowOffsetHours))

	return b.String()
}

// capitalize: первая буква заглавная, остальные строчные.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Russian).String(s[:size]) +
		cases.Lower(language.Russian).String(s[size:])
}
