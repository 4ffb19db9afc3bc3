// Command riskprobe queries the live Open-Meteo API for a coordinate and
// prints the computed flood risk as JSON. Useful for spot-checking the
// classifier against real conditions without running the full service.
//
// Usage:
//
//	go run ./cmd/riskprobe -lat 31.5 -lon 74.3 -mode current
//	go run ./cmd/riskprobe -lat 31.5 -lon 74.3 -mode forecast
//	go run ./cmd/riskprobe -lat 31.5 -lon 74.3 -mode area
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/service"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude of the query point")
	lon := flag.Float64("lon", 0, "longitude of the query point")
	mode := flag.String("mode", "current", "query mode: current, forecast, or area")
	baseURL := flag.String("base-url", "https://api.open-meteo.com/v1/forecast", "Open-Meteo forecast endpoint")
	days := flag.Int("days", 3, "forecast horizon in days")
	flag.Parse()

	if code := run(*lat, *lon, *mode, *baseURL, *days); code != 0 {
		os.Exit(code)
	}
}

func run(lat, lon float64, mode, baseURL string, days int) int {
	cfg := &config.Config{
		OpenMeteoBaseURL: baseURL,
		OpenMeteoTimeout: 10 * time.Second,
		ForecastDays:     days,
	}

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetrics()

	weather := openmeteo.NewClient(cfg, metrics, logger)
	risk := service.New(weather, service.Options{HorizonDays: days}, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		result any
		err    error
	)
	switch mode {
	case "current":
		result, err = risk.CurrentRisk(ctx, lat, lon)
	case "forecast":
		result, err = risk.ForecastRisk(ctx, lat, lon)
	case "area":
		result, err = risk.AreaRisk(ctx, lat, lon)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want current, forecast, or area)\n", mode)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		return 1
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
