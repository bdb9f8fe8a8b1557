package geo

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var defaultCities = []string{
	"Москва",
	"Санкт-Петербург",
	"Новосибирск",
	"Екатеринбург",
	"Казань",
	"Нижний Новгород",
	"Челябинск",
	"Самара",
	"Омск",
	"Ростов-на-Дону",
	"Уфа",
	"Красноярск",
	"Воронеж",
	"Пермь",
	"Волгоград",
}

// DefaultCities returns the built-in known-cities list in display order.
func DefaultCities() []string {
	return append([]string(nil), defaultCities...)
}

// Catalog is the fixed list of known cities used for direct selection and autocomplete.
type Catalog struct {
	names []string
	index map[string]string // normalized -> canonical
}

// NewCatalog builds a catalog from names, keeping the first spelling of
// case-insensitive duplicates. An empty list yields the default cities.
func NewCatalog(names []string) *Catalog {
	if len(names) == 0 {
		names = defaultCities
	}
	c := &Catalog{index: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := common.Normalize(n)
		if _, ok := c.index[key]; ok {
			continue
		}
		c.index[key] = n
		c.names = append(c.names, n)
	}
	return c
}

// Names returns the catalog in display order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Match returns the catalog city equal to name ignoring case. Partial matches
// never resolve.
func (c *Catalog) Match(name string) (weather.City, bool) {
	canonical, ok := c.index[common.Normalize(name)]
	if !ok {
		return weather.City{}, false
	}
	return weather.City{Name: canonical}, true
}

// Suggest returns catalog names containing prefix, ignoring case, in catalog order.
func (c *Catalog) Suggest(prefix string) []string {
	out := []string{}
	p := common.Normalize(prefix)
	if p == "" {
		return out
	}
	for _, n := range c.names {
		if strings.Contains(strings.ToLower(n), p) {
			out = append(out, n)
		}
	}
	return out
}
