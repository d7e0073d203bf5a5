package config

import (
	"errors"
	"os"
	"path/filepath"
)

// defaultConfig is written on first run so there is always a config to edit.
const defaultConfig = `lake:
  dir: housing_data

catalog:
  path: housing_data/runs.db

fetch:
  max_in_flight: 3
  max_retries: 3
  base_delay_ms: 1000
  batch_delay_ms: 1000
  timeout_seconds: 20
  host_rps: 1
  host_burst: 3

sources:
  - name: daft
    kind: script
    enabled: true
    url: "https://www.daft.ie/property-for-rent/dublin/houses?numBeds_from=3&numBeds_to=3&pageSize=20"
    page_size: 20

  - name: property
    kind: html
    enabled: true
    url: "https://www.property.ie/property-to-let/dublin/"
    parent: ".search_result"
    fields:
      address:
        selector: ".sresult_address h2 a"
        attribute: text
      price:
        selector: ".sresult_description h3"
        attribute: text
    pagination:
      selector: "#pages a"
      pattern: "p_"

  # Needs an API key; enable once MYHOME_API_KEY is set.
  - name: myhome
    kind: api
    enabled: false
    page_size: 20
    api:
      base_url: "https://api.myhome.ie/search"
      endpoint: "https://www.myhome.ie/rentals/dublin/property-to-rent"
      key: ""            # or set MYHOME_API_KEY
      correlation_id: "" # or set MYHOME_CORRELATION_ID
`

// Ensure creates dataDir/config.yml with defaults when it does not exist yet
// and returns its path.
func Ensure(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
