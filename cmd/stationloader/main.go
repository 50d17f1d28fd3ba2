// The stationloader downloads the national stop register (GTFS Sverige 2,
// Samtrafiken) and upserts every stop into the stops table. Run it once on
// setup and again whenever the register is refreshed.
//
// Usage:
//
//	stationloader [feed-url]
//
// The feed URL defaults to the Samtrafiken endpoint; the static-data API
// key is appended from PENDLA_UPSTREAM_RESROBOT_KEY when the URL carries
// no key of its own.
package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oskarlindgren/pendla/internal/adapters/postgres"
	"github.com/oskarlindgren/pendla/internal/core/domain"
	"github.com/oskarlindgren/pendla/internal/pkg/config"
)

const defaultFeedURL = "https://opendata.samtrafiken.se/gtfs-sverige-2/sweden.zip"

const batchSize = 500

func main() {
	cfg, err := config.Load("pendla-stationloader")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	feedURL := defaultFeedURL
	if len(os.Args) > 1 {
		feedURL = os.Args[1]
	}
	if !strings.Contains(feedURL, "key=") && cfg.Upstream.ResRobotKey != "" {
		sep := "?"
		if strings.Contains(feedURL, "?") {
			sep = "&"
		}
		feedURL = feedURL + sep + "key=" + cfg.Upstream.ResRobotKey
	}

	log.Printf("downloading stop register from %s", redactKey(feedURL))

	client := &http.Client{Timeout: 120 * time.Second}
	zr, err := fetchArchive(client, feedURL)
	if err != nil {
		log.Fatalf("fetch register: %v", err)
	}

	stops, err := parseStops(zr)
	if err != nil {
		log.Fatalf("parse stops: %v", err)
	}
	log.Printf("parsed %d unique stops", len(stops))

	repo := postgres.NewStopRepo(db)
	upserted := 0
	for start := 0; start < len(stops); start += batchSize {
		end := start + batchSize
		if end > len(stops) {
			end = len(stops)
		}
		if err := repo.UpsertBatch(ctx, stops[start:end]); err != nil {
			log.Fatalf("upsert batch %d-%d: %v", start, end, err)
		}
		upserted = end
	}
	log.Printf("station load complete, %d stops upserted", upserted)

	lines, err := parseLines(zr)
	if err != nil {
		log.Printf("parse lines: %v (skipping line load)", err)
		return
	}
	lineRepo := postgres.NewLineRepo(db)
	for i := range lines {
		if err := lineRepo.Upsert(ctx, &lines[i]); err != nil {
			log.Fatalf("upsert line %s: %v", lines[i].Designation, err)
		}
	}
	log.Printf("line load complete, %d lines upserted", len(lines))
}

func fetchArchive(client *http.Client, url string) (*zip.Reader, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, redactKey(url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return zr, nil
}

// parseStops reads stops.txt and returns one domain stop per register
// identifier. Entrances and generic nodes are skipped; duplicate rows for
// the same identifier keep the first occurrence.
func parseStops(zr *zip.Reader) ([]domain.Stop, error) {
	f, err := openCSV(zr, "stops.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"stop_id", "stop_name", "stop_lat", "stop_lon"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("stops.txt missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	seen := map[string]bool{}
	var stops []domain.Stop
	skipped := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		// location_type 2 = entrance, 3 = generic node
		if lt := field(record, "location_type"); lt == "2" || lt == "3" {
			continue
		}

		stopID := field(record, "stop_id")
		if stopID == "" || seen[stopID] {
			continue
		}

		lat, latErr := strconv.ParseFloat(field(record, "stop_lat"), 64)
		lon, lonErr := strconv.ParseFloat(field(record, "stop_lon"), 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		seen[stopID] = true
		stops = append(stops, domain.Stop{
			StopID:       stopID,
			Name:         field(record, "stop_name"),
			Location:     domain.GeoPoint{Lat: lat, Lon: lon},
			Mode:         domain.ModeOther,
			PlatformCode: field(record, "platform_code"),
		})
	}

	if skipped > 0 {
		log.Printf("skipped %d malformed rows", skipped)
	}
	return stops, nil
}

// parseLines reads routes.txt and returns one line per designation and
// mode. Routes without a short name are skipped; the register has one row
// per operator variant, so duplicates are common.
func parseLines(zr *zip.Reader) ([]domain.Line, error) {
	f, err := openCSV(zr, "routes.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	seen := map[string]bool{}
	var lines []domain.Line

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		designation := field(record, "route_short_name")
		if designation == "" {
			continue
		}
		mode := modeForRouteType(field(record, "route_type"))
		key := designation + "|" + string(mode)
		if seen[key] {
			continue
		}
		seen[key] = true

		lines = append(lines, domain.Line{
			Designation: designation,
			Mode:        mode,
			Name:        field(record, "route_long_name"),
			Color:       field(record, "route_color"),
		})
	}
	return lines, nil
}

// modeForRouteType maps GTFS route_type values, including the extended
// European set, onto transport modes.
func modeForRouteType(raw string) domain.TransportMode {
	t, err := strconv.Atoi(raw)
	if err != nil {
		return domain.ModeOther
	}
	switch {
	case t == 0 || (t >= 900 && t < 1000):
		return domain.ModeTram
	case t == 1 || (t >= 400 && t < 500):
		return domain.ModeMetro
	case t == 2 || (t >= 100 && t < 200):
		return domain.ModeRail
	case t == 3 || (t >= 200 && t < 300) || (t >= 700 && t < 800):
		return domain.ModeBus
	case t == 4 || t == 1000 || t == 1200:
		return domain.ModeFerry
	default:
		return domain.ModeOther
	}
}

func openCSV(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

func redactKey(url string) string {
	if i := strings.Index(url, "key="); i >= 0 {
		return url[:i] + "key=***"
	}
	return url
}
