package repository

import (
	_ "embed"
	"encoding/json"
)

//go:embed seed/stores.json
var seedStores []byte

// SeedStores returns a fresh copy of the built-in store -> products catalog,
// used when no stores document has been written yet.
func SeedStores() map[string][]string {
	stores := make(map[string][]string)
	if err := json.Unmarshal(seedStores, &stores); err != nil {
		// the file is compiled in; a decode failure is a build defect
		panic("repository: embedded seed catalog is invalid: " + err.Error())
	}
	return stores
}
