package zakat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Environment is what the caller knows about the user at session start.
type Environment struct {
	// Locales in preference order, e.g. ["en-GB", "en"]. An Accept-Language
	// header can be split with ParseAcceptLanguage.
	Locales []string
	// Timezone is an IANA zone name such as "Asia/Karachi".
	Timezone string
}

// Source names the step of the defaulting chain that produced a currency.
type Source string

const (
	SourceRegion   Source = "region"
	SourceEuroZone Source = "eurozone"
	SourceTimezone Source = "timezone"
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of running the defaulting chain.
type Resolution struct {
	Code   Code
	Source Source
	// Diagnostics lists locale strings that could not be parsed and any
	// resolved code that was not supported by the catalog.
	Diagnostics []string
}

// Resolver is one step of the defaulting chain.
type Resolver struct {
	Source  Source
	Resolve func(regions []language.Region, tz string) (Code, bool)
}

var regionCurrencies = map[string]Code{
	"US": USD,
	"GB": GBP,
	"PK": PKR,
	"CA": CAD,
	"AU": AUD,
	"IN": INR,
	"SA": SAR,
	"AE": AED,
	"MY": MYR,
	"ID": IDR,
	"TR": TRY,
}

var euroZone = map[string]bool{
	"AT": true, "BE": true, "HR": true, "CY": true, "EE": true,
	"FI": true, "FR": true, "DE": true, "GR": true, "IE": true,
	"IT": true, "LV": true, "LT": true, "LU": true, "MT": true,
	"NL": true, "PT": true, "SK": true, "SI": true, "ES": true,
}

var timezoneCurrencies = map[string]Code{
	"America/New_York":    USD,
	"America/Chicago":     USD,
	"America/Denver":      USD,
	"America/Los_Angeles": USD,
	"America/Phoenix":     USD,
	"America/Anchorage":   USD,
	"Pacific/Honolulu":    USD,
	"America/Toronto":     CAD,
	"America/Vancouver":   CAD,
	"Europe/London":       GBP,
	"Europe/Dublin":       EUR,
	"Europe/Paris":        EUR,
	"Europe/Berlin":       EUR,
	"Europe/Madrid":       EUR,
	"Europe/Rome":         EUR,
	"Europe/Amsterdam":    EUR,
	"Europe/Brussels":     EUR,
	"Europe/Vienna":       EUR,
	"Europe/Lisbon":       EUR,
	"Europe/Helsinki":     EUR,
	"Europe/Athens":       EUR,
	"Europe/Istanbul":     TRY,
	"Asia/Karachi":        PKR,
	"Asia/Kolkata":        INR,
	"Asia/Calcutta":       INR,
	"Asia/Riyadh":         SAR,
	"Asia/Dubai":          AED,
	"Asia/Kuala_Lumpur":   MYR,
	"Asia/Jakarta":        IDR,
	"Australia/Sydney":    AUD,
	"Australia/Melbourne": AUD,
	"Australia/Perth":     AUD,
}

// ByRegion maps the first explicit region with a table entry.
var ByRegion = Resolver{
	Source: SourceRegion,
	Resolve: func(regions []language.Region, _ string) (Code, bool) {
		for _, r := range regions {
			if code, ok := regionCurrencies[r.String()]; ok {
				return code, true
			}
		}
		return "", false
	},
}

// ByEuroZone maps any explicit euro-area region to EUR.
var ByEuroZone = Resolver{
	Source: SourceEuroZone,
	Resolve: func(regions []language.Region, _ string) (Code, bool) {
		for _, r := range regions {
			if euroZone[r.String()] {
				return EUR, true
			}
		}
		return "", false
	},
}

// ByTimezone maps a known IANA zone name.
var ByTimezone = Resolver{
	Source: SourceTimezone,
	Resolve: func(_ []language.Region, tz string) (Code, bool) {
		code, ok := timezoneCurrencies[strings.TrimSpace(tz)]
		return code, ok
	},
}

// DefaultChain is the resolver order used at session start.
var DefaultChain = []Resolver{ByRegion, ByEuroZone, ByTimezone}

// ResolveCurrency runs the default chain against env.
func ResolveCurrency(env Environment, catalog *Catalog) Resolution {
	return ResolveWith(DefaultChain, env, catalog)
}

// ResolveWith runs chain in order and returns the first hit. It always
// terminates with a supported code.
func ResolveWith(chain []Resolver, env Environment, catalog *Catalog) Resolution {
	regions, diags := explicitRegions(env.Locales)

	for _, step := range chain {
		code, ok := step.Resolve(regions, env.Timezone)
		if !ok {
			continue
		}
		if catalog != nil && !catalog.Supports(code) {
			diags = append(diags, fmt.Sprintf("currency %s from %s is not supported", code, step.Source))
			return Resolution{Code: FallbackCode, Source: SourceFallback, Diagnostics: diags}
		}
		return Resolution{Code: code, Source: step.Source, Diagnostics: diags}
	}
	return Resolution{Code: FallbackCode, Source: SourceFallback, Diagnostics: diags}
}

// explicitRegions keeps only regions the user actually wrote; "en" alone
// does not imply US.
func explicitRegions(locales []string) ([]language.Region, []string) {
	var (
		regions []language.Region
		diags   []string
	)
	for _, raw := range locales {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		tag, err := language.Parse(s)
		if err != nil {
			diags = append(diags, fmt.Sprintf("locale %q: %v", s, err))
			continue
		}
		region, conf := tag.Region()
		if conf != language.Exact {
			continue
		}
		regions = append(regions, region)
	}
	return regions, diags
}

// ParseAcceptLanguage splits an Accept-Language header into locale strings
// ordered by quality. Each entry is parsed on its own, so a malformed entry
// is dropped and reported in the error while the rest are still returned.
func ParseAcceptLanguage(header string) ([]string, error) {
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}

	type weighted struct {
		tag string
		q   float32
	}
	var (
		entries []weighted
		errs    []error
	)
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags, qs, err := language.ParseAcceptLanguage(part)
		if err != nil {
			errs = append(errs, fmt.Errorf("accept-language entry %q: %w", part, err))
			continue
		}
		for i, t := range tags {
			entries = append(entries, weighted{tag: t.String(), q: qs[i]})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].q > entries[j].q })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.tag)
	}
	return out, errors.Join(errs...)
}
