// Package bankcode provides the static bank display-name to clearing code
// directory. The directory is built once at startup and never mutated.
package bankcode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Entry is a single directory row.
type Entry struct {
	Name string `json:"name" mapstructure:"name"`
	Code string `json:"code" mapstructure:"code"`
}

// Directory maps bank display names to 2-digit clearing codes. Lookups go
// through normalized keys; listings keep the original display names.
type Directory struct {
	codes   map[string]string
	entries []Entry
}

// defaultEntries is the compiled-in directory used when no override file is
// configured.
var defaultEntries = map[string]string{
	"Bank Yahav":             "04",
	"Bank of Israel":         "99",
	"Postal Bank":            "09",
	"Bank Leumi":             "10",
	"Discount Bank":          "11",
	"Bank Hapoalim":          "12",
	"Igud Bank":              "13",
	"Bank Otsar Ha-Hayal":    "14",
	"Mercantile Discount":    "17",
	"One Zero Digital Bank":  "18",
	"Mizrahi Tefahot":        "20",
	"Citibank":               "22",
	"HSBC":                   "23",
	"Bank Yerushalayim":      "26",
	"Barclays":               "27",
	"First International":    "31",
	"Bank Massad":            "46",
	"Poaley Agudat Israel":   "52",
	"Hessed Savings":         "65",
	"Bank of Jordan":         "67",
	"Dexia Israel":           "68",
}

// New builds a directory from explicit entries. Intended for tests and for
// callers that manage their own source of truth.
func New(entries map[string]string) *Directory {
	d := &Directory{codes: make(map[string]string, len(entries))}
	for name, code := range entries {
		d.codes[normalizeName(name)] = code
		d.entries = append(d.entries, Entry{Name: strings.TrimSpace(name), Code: code})
	}
	sortEntries(d.entries)
	return d
}

// Load builds the directory from compiled defaults, optionally replaced by a
// YAML file of `banks: [{name, code}]` entries. The file is read exactly
// once; later edits require a restart.
func Load(overrideFile string) (*Directory, error) {
	if strings.TrimSpace(overrideFile) == "" {
		return New(defaultEntries), nil
	}

	v := viper.New()
	v.SetConfigFile(overrideFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read bank directory %s: %w", overrideFile, err)
	}

	var entries []Entry
	if err := v.UnmarshalKey("banks", &entries); err != nil {
		return nil, fmt.Errorf("parse bank directory %s: %w", overrideFile, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("bank directory %s contains no banks", overrideFile)
	}

	d := &Directory{codes: make(map[string]string, len(entries))}
	for _, entry := range entries {
		name := normalizeName(entry.Name)
		code := strings.TrimSpace(entry.Code)
		if name == "" || code == "" {
			return nil, fmt.Errorf("bank directory %s contains an empty name or code", overrideFile)
		}
		d.codes[name] = code
		d.entries = append(d.entries, Entry{Name: strings.TrimSpace(entry.Name), Code: code})
	}
	sortEntries(d.entries)
	return d, nil
}

// Lookup returns the clearing code for a bank display name.
func (d *Directory) Lookup(bankName string) (string, bool) {
	if d == nil {
		return "", false
	}
	code, ok := d.codes[normalizeName(bankName)]
	return code, ok
}

// Entries returns the directory contents, display names intact, sorted by
// bank name.
func (d *Directory) Entries() []Entry {
	if d == nil {
		return nil
	}
	return append([]Entry(nil), d.entries...)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
