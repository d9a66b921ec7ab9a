package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Resource names a fleet collection exposed by the API.
type Resource string

const (
	ResourceVehicles    Resource = "vehicles"
	ResourceDrivers     Resource = "drivers"
	ResourceFuel        Resource = "fuel"
	ResourceMaintenance Resource = "maintenance"
	ResourceRoutes      Resource = "routes"
	ResourceGeofences   Resource = "geofences"
	ResourceMessages    Resource = "messages"
	ResourceReports     Resource = "reports"
	ResourceSettings    Resource = "settings"
)

// Resources lists every known collection in display order.
var Resources = []Resource{
	ResourceVehicles, ResourceDrivers, ResourceFuel, ResourceMaintenance,
	ResourceRoutes, ResourceGeofences, ResourceMessages, ResourceReports,
	ResourceSettings,
}

var ErrUnknownResource = errors.New("unknown resource")

// ParseResource maps a user-typed name to a Resource.
func ParseResource(s string) (Resource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Resources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// Record is one fleet entity as returned by the API. Its shape depends on the
// resource and is not interpreted by the console.
type Record map[string]any

// ID returns the record's identifier, accepting both "id" and "_id".
func (r Record) ID() string {
	for _, k := range []string{"id", "_id"} {
		if v, ok := r[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

var ErrIncorrectField = errors.New("field must be name=value")

// RecordFromPairs builds a Record from name=value arguments. Values that parse
// as integers, floats or booleans are stored as such.
func RecordFromPairs(pairs []string) (Record, error) {
	rec := make(Record, len(pairs))
	for _, item := range pairs {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectField, item)
		}
		rec[name] = scalar(value)
	}
	return rec, nil
}

func scalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// Query holds list pagination and search hints passed to the server.
type Query struct {
	Page   int
	Limit  int
	Search string
}

// Values encodes q as URL query parameters, omitting zero fields.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// Page is one page of a list response.
type Page struct {
	Items []Record
	Total int
}
