// Package mains works out the local electrical mains frequency from the
// system timezone. The synthetic signal generator uses it to place hum
// where a real capture would pick it up.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultHz is used whenever the country cannot be determined.
const DefaultHz = 50

// Info describes the mains supply for a timezone.
type Info struct {
	Timezone string
	Country  string // empty when unknown
	Hz       int
}

// Detect looks up the mains supply for the runtime timezone.
func Detect() Info {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Info{Hz: DefaultHz}
	}
	return Lookup(timezone)
}

// Frequency returns the local mains frequency in Hz (50 or 60).
func Frequency() int {
	return Detect().Hz
}

// Lookup resolves an IANA timezone to its country and mains frequency.
func Lookup(timezone string) Info {
	info := Info{Timezone: timezone, Hz: DefaultHz}

	// No country behind these.
	if timezone == "" || timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return info
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return info
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return info
	}

	info.Country = country
	info.Hz = hzForCountry(country)
	return info
}

// Harmonics returns the fundamental and the next n-1 multiples of hz that
// fall below nyquist.
func Harmonics(hz float64, n int, nyquist float64) []float64 {
	var out []float64
	for k := 1; k <= n; k++ {
		f := hz * float64(k)
		if f >= nyquist {
			break
		}
		out = append(out, f)
	}
	return out
}

func hzForCountry(country string) int {
	// Japan is split by region. The 50Hz east includes Tokyo.
	if country == "Japan" {
		return 50
	}
	for _, c := range sixtyHz {
		if c == country {
			return 60
		}
	}
	return DefaultHz
}

// sixtyHz lists countries on 60Hz supply. Source:
// https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHz = []string{
	"United States", "Canada", "Mexico",
	"Belize", "Costa Rica", "El Salvador", "Guatemala", "Honduras", "Nicaragua", "Panama",
	"Bahamas", "Barbados", "Cayman Islands", "Cuba", "Dominican Republic", "Haiti",
	"Jamaica", "Puerto Rico", "Trinidad and Tobago", "U.S. Virgin Islands",
	"Brazil", "Colombia", "Ecuador", "Guyana", "Peru", "Suriname", "Venezuela",
	"South Korea", "Taiwan", "Philippines", "Saudi Arabia",
	"Guam", "American Samoa", "Marshall Islands", "Micronesia", "Palau",
}
