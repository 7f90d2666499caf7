// generate-dataset is the offline producer of the bundled parks dataset. It
// pulls the park-lands resource from the DataSF open-data API (or reads a
// saved raw export), filters and categorizes the records, consolidates
// duplicates, and writes the dataset file the app ships with. It is a
// one-time tool, never a runtime dependency.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// CLI flags
var (
	source  = flag.String("source", "https://data.sfgov.org/resource/gtr9-ntp6.json?$limit=5000", "Open-data URL or local raw JSON export")
	out     = flag.String("out", "data/parks.json", "Output dataset path")
	version = flag.String("version", "", "Dataset version string (required)")
	dryRun  = flag.Bool("dry-run", false, "Parse + validate only; no file written")
)

// rawRecord mirrors the DataSF park-lands schema. Socrata returns every
// field as a string.
type rawRecord struct {
	PropertyID   string `json:"propertyid"`
	PropertyName string `json:"propertyname"`
	PropertyType string `json:"propertytype"`
	Acres        string `json:"acres"`
	Address      string `json:"address"`
	Neighborhood string `json:"analysis_neighborhood"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Description  string `json:"description"`
}

type parkRecord struct {
	Name               string  `json:"name"`
	ShortDescription   string  `json:"shortDescription"`
	FullDescription    string  `json:"fullDescription"`
	Category           string  `json:"category"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Address            string  `json:"address"`
	Neighborhood       *string `json:"neighborhood"`
	Acreage            float64 `json:"acreage"`
	ExternalPropertyID *string `json:"externalPropertyID"`
}

type dataset struct {
	Version       string       `json:"version"`
	GeneratedDate string       `json:"generatedDate"`
	Parks         []parkRecord `json:"parks"`
}

// categoryByType maps upstream property types onto the app's closed
// category set. Types not listed (parkways, camps, golf courses) are
// filtered out entirely.
var categoryByType = map[string]string{
	"Regional Park":                   "destination",
	"Neighborhood Park or Playground": "neighborhood",
	"Mini Park":                       "mini",
	"Civic Plaza or Square":           "plaza",
	"Community Garden":                "garden",
}

func main() {
	flag.Parse()
	if *version == "" {
		fatalf("--version is required")
	}

	raw, err := fetch(*source)
	if err != nil {
		fatalf("fetch: %v", err)
	}

	var records []rawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		fatalf("decode source: %v", err)
	}
	fmt.Printf("Fetched %d raw records\n", len(records))

	parks, skipped := convert(records)
	parks = consolidate(parks)
	fmt.Printf("Kept %d parks (%d filtered)\n", len(parks), skipped)

	if len(parks) == 0 {
		fatalf("no parks survived filtering; refusing to write an empty dataset")
	}

	ds := dataset{
		Version:       *version,
		GeneratedDate: time.Now().UTC().Format(time.RFC3339),
		Parks:         parks,
	}

	if *dryRun {
		fmt.Println("Dry run complete. No file written.")
		return
	}

	encoded, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		fatalf("encode dataset: %v", err)
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("Wrote %s (version %s)\n", *out, *version)
}

func fetch(source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http") {
		return os.ReadFile(source)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(source)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-data API returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func convert(records []rawRecord) (parks []parkRecord, skipped int) {
	for _, r := range records {
		category, ok := categoryByType[r.PropertyType]
		if !ok || r.PropertyName == "" {
			skipped++
			continue
		}

		lat, _ := strconv.ParseFloat(r.Latitude, 64)
		lng, _ := strconv.ParseFloat(r.Longitude, 64)
		acres, _ := strconv.ParseFloat(r.Acres, 64)

		p := parkRecord{
			Name:             strings.Join(strings.Fields(r.PropertyName), " "),
			ShortDescription: r.Description,
			FullDescription:  r.Description,
			Category:         category,
			Latitude:         lat,
			Longitude:        lng,
			Address:          r.Address,
			Acreage:          acres,
		}
		if r.Neighborhood != "" {
			n := r.Neighborhood
			p.Neighborhood = &n
		}
		if r.PropertyID != "" {
			id := r.PropertyID
			p.ExternalPropertyID = &id
		}
		parks = append(parks, p)
	}
	return parks, skipped
}

// consolidate merges rows sharing a property id. The upstream data lists
// one row per land parcel, so a park spanning parcels appears several times.
// The largest parcel wins and the acreage sums.
func consolidate(parks []parkRecord) []parkRecord {
	byID := make(map[string]int)
	var out []parkRecord
	for _, p := range parks {
		if p.ExternalPropertyID == nil {
			out = append(out, p)
			continue
		}
		id := *p.ExternalPropertyID
		if i, ok := byID[id]; ok {
			out[i].Acreage += p.Acreage
			continue
		}
		byID[id] = len(out)
		out = append(out, p)
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
