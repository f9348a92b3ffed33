package model

import (
	"fmt"
	"time"
)

// Coordinates - географическая точка из сообщения с геопозицией
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Query - запрос погоды: либо название места, либо координаты
type Query struct {
	Place    string
	Location *Coordinates
}

func PlaceQuery(place string) Query {
	return Query{Place: place}
}

func LocationQuery(lat, lon float64) Query {
	return Query{Location: &Coordinates{Latitude: lat, Longitude: lon}}
}

func (q Query) String() string {
	if q.Location != nil {
		return fmt.Sprintf("%.4f,%.4f", q.Location.Latitude, q.Location.Longitude)
	}
	return q.Place
}

// Conditions - проверенный ответ провайдера, все поля обязательны
type Conditions struct {
	Place       string      `json:"place"`
	Coordinates Coordinates `json:"coord"`
	Description string      `json:"description"`
	Temp        float64     `json:"temperature"`
	FeelsLike   float64     `json:"feels_like"`
	Pressure    float64     `json:"pressure_hpa"`
	Humidity    int         `json:"humidity"`
	Visibility  int         `json:"visibility"`
	WindSpeed   float64     `json:"wind_speed"`
	WindDeg     float64     `json:"wind_deg"`
	Sunrise     int64       `json:"sunrise"`
	Sunset      int64       `json:"sunset"`
	// время измерения (unix), 0 если провайдер его не прислал
	ObservedAt  int64       `json:"observed_at"`
}

// Observation - структура, которая летает через Kafka.
// Не содержит данных пользователя.
type Observation struct {
	City      string    `json:"city"`
	Temp      float64   `json:"temperature"`
	Condition string    `json:"condition"`
	Provider  string    `json:"provider"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// NewObservation возвращает false, если наблюдение нельзя сохранить:
// без названия места или без времени измерения.
func NewObservation(c *Conditions, provider string) (Observation, bool) {
	if c.Place == "" || c.ObservedAt == 0 {
		return Observation{}, false
	}
	return Observation{
		City:      c.Place,
		Temp:      c.Temp,
		Condition: c.Description,
		Provider:  provider,
		Latitude:  c.Coordinates.Latitude,
		Longitude: c.Coordinates.Longitude,
		Timestamp: time.Unix(c.ObservedAt, 0).UTC(),
	}, true
}
