package weather

import (
	"math"
	"time"
)

const (
	// hPa в одном мм рт. ст.
	hpaPerMMHg = 1.333

	// Восход и закат показываются по Москве
	moscowOffsetHours = 3
)

var directions = [8]string{"С", "СВ", "В", "ЮВ", "Ю", "ЮЗ", "З", "СЗ"}

// PressureMMHg переводит гектопаскали в миллиметры ртутного столба.
func PressureMMHg(hpa float64) float64 {
	return hpa / hpaPerMMHg
}

// WindBucket возвращает номер румба 0..7, 0 - север.
func WindBucket(deg float64) int {
	bucket := int(math.Floor((deg+22.5)/45)) % 8
	if bucket < 0 {
		bucket += 8
	}
	return bucket
}

func WindDirection(deg float64) string {
	return directions[WindBucket(deg)]
}

// Clock переводит Unix-время в "HH:MM" для фиксированного смещения от UTC.
func Clock(epochSeconds int64, offsetHours int) string {
	zone := time.FixedZone("", offsetHours*60*60)
	return time.Unix(epochSeconds, 0).In(zone).Format("15:04")
}
