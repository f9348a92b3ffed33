package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gometeo/weatherbot/internal/model"
)

/*
	OpenWeather API Response Codes
	200  // Success
	400  // Bad request (e.g., invalid parameters)
	401  // Unauthorized (invalid API key)
	404  // City not found
	429  // Too many requests (exceeded rate limit)
*/

const ProviderName = "OpenWeatherMap"

var (
	ErrNotFound          = errors.New("населенный пункт не найден")
	ErrMalformedResponse = errors.New("некорректный ответ провайдера погоды")
)

// currentResponse повторяет JSON /data/2.5/weather. Указатели позволяют
// отличить отсутствующее поле от нулевого значения.
type currentResponse struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Pressure  *float64 `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Visibility *int `json:"visibility"`
	Wind       *struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Sys *struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type OpenWeather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenWeather(apiKey, baseURL string, timeout time.Duration) *OpenWeather {
	return &OpenWeather{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Current запрашивает текущую погоду по названию места или координатам.
func (p *OpenWeather) Current(ctx context.Context, q model.Query) (*model.Conditions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.buildURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к провайдеру погоды: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", q, ErrNotFound)
	default:
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("провайдер погоды вернул статус %d: %s", resp.StatusCode, apiErr.Message)
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return data.conditions()
}

func (d *currentResponse) conditions() (*model.Conditions, error) {
	missing := func(field string) error {
		return fmt.Errorf("%w: нет поля %s", ErrMalformedResponse, field)
	}

	switch {
	case len(d.Weather) == 0 || d.Weather[0].Description == "":
		return nil, missing("weather.description")
	case d.Main == nil:
		return nil, missing("main")
	case d.Main.Temp == nil:
		return nil, missing("main.temp")
	case d.Main.FeelsLike == nil:
		return nil, missing("main.feels_like")
	case d.Main.Pressure == nil:
		return nil, missing("main.pressure")
	case d.Main.Humidity == nil:
		return nil, missing("main.humidity")
	case d.Visibility == nil:
		return nil, missing("visibility")
	case d.Wind == nil || d.Wind.Speed == nil:
		return nil, missing("wind.speed")
	case d.Wind.Deg == nil:
		return nil, missing("wind.deg")
	case d.Sys == nil || d.Sys.Sunrise == nil:
		return nil, missing("sys.sunrise")
	case d.Sys.Sunset == nil:
		return nil, missing("sys.sunset")
	}

	c := &model.Conditions{
		Place:       d.Name,
		Description: d.Weather[0].Description,
		Temp:        *d.Main.Temp,
		FeelsLike:   *d.Main.FeelsLike,
		Pressure:    *d.Main.Pressure,
		Humidity:    *d.Main.Humidity,
		Visibility:  *d.Visibility,
		WindSpeed:   *d.Wind.Speed,
		WindDeg:     *d.Wind.Deg,
		Sunrise:     *d.Sys.Sunrise,
		Sunset:      *d.Sys.Sunset,
		ObservedAt:  d.Dt,
	}
	if d.Coord != nil {
		c.Coordinates = model.Coordinates{Latitude: d.Coord.Lat, Longitude: d.Coord.Lon}
	}

	return c, nil
}

func (p *OpenWeather) buildURL(q model.Query) string {
	params := url.Values{}
	if q.Location != nil {
		params.Set("lat", strconv.FormatFloat(q.Location.Latitude, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(q.Location.Longitude, 'f', -1, 64))
	} else {
		params.Set("q", q.Place)
	}
	params.Set("appid", p.apiKey)
	params.Set("lang", "ru")
	params.Set("units", "metric")

	return p.baseURL + "/data/2.5/weather?" + params.Encode()
}
