// Package gazetteer resolves free-text area names to reference coordinates.
package gazetteer

import (
	"strings"
	"unicode"

	"backend-itinerary/internal/shared/geo"
)

const citySuffix = " City"

// Place is a gazetteer entry.
type Place struct {
	Name  string    `json:"name"`
	Point geo.Point `json:"point"`
	City  bool      `json:"city"`
}

// Places is the built-in table. Municipalities with City=true are
// administratively cities and are addressed with the " City" suffix.
var Places = []Place{
	{Name: "Bacolod City", Point: geo.Point{Lat: 10.6765, Lng: 122.9509}, City: true},
	{Name: "Silay City", Point: geo.Point{Lat: 10.7985, Lng: 122.9745}, City: true},
	{Name: "Talisay City", Point: geo.Point{Lat: 10.7363, Lng: 122.9672}, City: true},
	{Name: "Bago City", Point: geo.Point{Lat: 10.5380, Lng: 122.8358}, City: true},
	{Name: "Victorias City", Point: geo.Point{Lat: 10.9014, Lng: 123.0708}, City: true},
	{Name: "Cadiz City", Point: geo.Point{Lat: 10.9506, Lng: 123.3086}, City: true},
	{Name: "Sagay City", Point: geo.Point{Lat: 10.8967, Lng: 123.4253}, City: true},
	{Name: "Escalante City", Point: geo.Point{Lat: 10.8403, Lng: 123.4997}, City: true},
	{Name: "San Carlos City", Point: geo.Point{Lat: 10.4929, Lng: 123.4095}, City: true},
	{Name: "La Carlota City", Point: geo.Point{Lat: 10.4244, Lng: 122.9219}, City: true},
	{Name: "Himamaylan City", Point: geo.Point{Lat: 10.0989, Lng: 122.8706}, City: true},
	{Name: "Kabankalan City", Point: geo.Point{Lat: 9.9906, Lng: 122.8147}, City: true},
	{Name: "Sipalay City", Point: geo.Point{Lat: 9.7519, Lng: 122.4042}, City: true},
	{Name: "Dumaguete City", Point: geo.Point{Lat: 9.3068, Lng: 123.3054}, City: true},
	{Name: "Iloilo City", Point: geo.Point{Lat: 10.7202, Lng: 122.5621}, City: true},
	{Name: "Cebu City", Point: geo.Point{Lat: 10.3157, Lng: 123.8854}, City: true},
	{Name: "Davao City", Point: geo.Point{Lat: 7.1907, Lng: 125.4553}, City: true},
	{Name: "Murcia", Point: geo.Point{Lat: 10.6050, Lng: 123.0417}},
	{Name: "Don Salvador Benedicto", Point: geo.Point{Lat: 10.5945, Lng: 123.2131}},
	{Name: "Manapla", Point: geo.Point{Lat: 10.9581, Lng: 123.1231}},
	{Name: "Valladolid", Point: geo.Point{Lat: 10.4597, Lng: 122.8247}},
	{Name: "Manila", Point: geo.Point{Lat: 14.5995, Lng: 120.9842}},
}

// Resolver looks names up in a static table.
type Resolver struct {
	byName map[string]geo.Point
	cities map[string]bool
}

func NewResolver(places []Place) *Resolver {
	r := &Resolver{
		byName: make(map[string]geo.Point, len(places)),
		cities: map[string]bool{},
	}
	for _, p := range places {
		key := strings.ToLower(p.Name)
		r.byName[key] = p.Point
		if p.City {
			r.cities[strings.ToLower(strings.TrimSuffix(p.Name, citySuffix))] = true
		}
	}
	return r
}

// Default returns a resolver over the built-in table.
func Default() *Resolver {
	return NewResolver(Places)
}

// Normalize turns "bacolod_city", "BACOLOD" or "bacolod" into "Bacolod City".
func (r *Resolver) Normalize(area string) string {
	name := titleCase(strings.ReplaceAll(area, "_", " "))
	if name == "" {
		return ""
	}
	if !hasCitySuffix(name) && r.cities[strings.ToLower(name)] {
		name += citySuffix
	}
	return name
}

// BaseName is the normalized name without a " City" suffix, for text matching.
func (r *Resolver) BaseName(area string) string {
	name := r.Normalize(area)
	if hasCitySuffix(name) {
		name = name[:len(name)-len(citySuffix)]
	}
	return name
}

// Resolve returns the reference coordinate for area, if known.
func (r *Resolver) Resolve(area string) (geo.Point, bool) {
	name := r.Normalize(area)
	if name == "" {
		return geo.Point{}, false
	}
	for _, candidate := range variants(name) {
		if p, ok := r.byName[strings.ToLower(candidate)]; ok {
			return p, true
		}
	}
	return geo.Point{}, false
}

func variants(name string) []string {
	out := []string{name, strings.ReplaceAll(name, " ", "")}
	if hasCitySuffix(name) {
		out = append(out, name[:len(name)-len(citySuffix)])
	} else {
		out = append(out, name+citySuffix)
	}
	return out
}

func hasCitySuffix(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(citySuffix))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
