// Package weather looks up current observations from the Central Weather
// Administration open-data API and formats them for chat replies.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/httpclient"
)

const observationPath = "/v1/rest/datastore/O-A0003-001"

var (
	// ErrUnknownCity is returned for a city without an observation station.
	ErrUnknownCity = errors.New("unknown city")

	// ErrNoData is returned when the station reported nothing.
	ErrNoData = errors.New("no observation data")
)

// stations maps city names to CWA observation station ids.
var stations = map[string]string{
	"臺北": "466920",
	"台北": "466920",
	"花蓮": "466990",
	"台中": "467490",
	"高雄": "467440",
	"台南": "467410",
}

// StationID returns the observation station for city.
func StationID(city string) (string, bool) {
	id, ok := stations[city]
	return id, ok
}

// Observation is one station report.
type Observation struct {
	City          string
	Time          string
	Weather       string
	Temperature   string
	Humidity      string
	Precipitation string
	UVIndex       string
}

// Text renders the observation as a chat reply.
func (o Observation) Text() string {
	return fmt.Sprintf("📍 %s 即時天氣資訊\n"+
		"🕒 時間：%s\n"+
		"🌤 天氣狀況：%s\n"+
		"🌡️ 溫度：%s °C\n"+
		"💧 溼度：%s %%\n"+
		"🌧️ 降雨量：%s mm\n"+
		"🔆 紫外線指數：%s",
		o.City, o.Time, o.Weather, o.Temperature, o.Humidity, o.Precipitation, o.UVIndex)
}

// Service queries the observation API.
type Service struct {
	client *httpclient.Client
	log    *zap.Logger
}

// New creates a Service for the API at baseURL authenticated with apiKey.
func New(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	opts := []httpclient.Option{
		httpclient.WithQueryAuth("Authorization", apiKey),
		httpclient.WithMaxRetries(1),
	}
	if timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(timeout))
	}
	return &Service{
		client: httpclient.New(baseURL, opts...),
		log:    log,
	}
}

// Observe fetches the latest observation for city.
func (s *Service) Observe(ctx context.Context, city string) (*Observation, error) {
	stationID, ok := StationID(city)
	if !ok {
		return nil, fmt.Errorf("looking up %q: %w", city, ErrUnknownCity)
	}

	body, err := s.client.Get(ctx, observationPath, url.Values{
		"StationId":   {stationID},
		"StationName": {city},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching observation for %s: %w", city, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decoding observation for %s: invalid JSON", city)
	}

	station := gjson.GetBytes(body, "records.Station.0")
	if !station.Exists() {
		return nil, fmt.Errorf("observation for %s: %w", city, ErrNoData)
	}

	return &Observation{
		City:          city,
		Time:          valueOr(station.Get("ObsTime.DateTime"), "未知"),
		Weather:       valueOr(station.Get("WeatherElement.Weather"), "無資料"),
		Temperature:   valueOr(station.Get("WeatherElement.AirTemperature"), "無資料"),
		Humidity:      valueOr(station.Get("WeatherElement.RelativeHumidity"), "無資料"),
		Precipitation: valueOr(station.Get("WeatherElement.Now.Precipitation"), "無資料"),
		UVIndex:       valueOr(station.Get("WeatherElement.UVIndex"), "無資料"),
	}, nil
}

// Describe returns the observation text for city, or a user-facing
// explanation when it cannot be produced.
func (s *Service) Describe(ctx context.Context, city string) string {
	obs, err := s.Observe(ctx, city)
	switch {
	case err == nil:
		return obs.Text()
	case errors.Is(err, ErrUnknownCity):
		return fmt.Sprintf("找不到「%s」的觀測站，請輸入例如「台北」、「花蓮」、「高雄」等城市名稱。", city)
	case errors.Is(err, ErrNoData):
		s.log.Warn("weather station returned no data", zap.String("city", city))
		return fmt.Sprintf("⚠️ %s 目前查無觀測資料，可能是氣象局暫無即時更新", city)
	default:
		s.log.Error("weather lookup failed", zap.String("city", city), zap.Error(err))
		return fmt.Sprintf("%s 天氣查詢失敗，請稍後再試。", city)
	}
}

func valueOr(r gjson.Result, fallback string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return fallback
	}
	return r.String()
}
