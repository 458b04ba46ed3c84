package places

import (
	"slices"

	"googlemaps.github.io/maps"
)

// Address component type tags used by the typed accessors of PlaceResult.
const (
	TypeStreetNumber     = "street_number"
	TypeRoute            = "route"
	TypeSublocality      = "sublocality"
	TypeNeighborhood     = "neighborhood"
	TypePremise          = "premise"
	TypePostalCode       = "postal_code"
	TypePostalCodeSuffix = "postal_code_suffix"
	TypeLocality         = "locality"
	TypeAdminAreaLevel1  = "administrative_area_level_1"
	TypeAdminAreaLevel2  = "administrative_area_level_2"
	TypeCountry          = "country"
)

// AddressComponent is one fragment of a structured address together with
// the semantic tags describing it (e.g. "postal_code", "locality").
type AddressComponent struct {
	LongName  string   `json:"long_name"`  // Full-length textual form.
	ShortName string   `json:"short_name"` // Abbreviated form.
	Types     []string `json:"types"`      // Semantic tags in payload order.
}

// HasType reports whether the component is tagged with tag.
func (ac AddressComponent) HasType(tag string) bool {
	return slices.Contains(ac.Types, tag)
}

// Geometry holds the point location of a place and its recommended viewport.
type Geometry struct {
	Location maps.LatLng       `json:"location"`
	Viewport maps.LatLngBounds `json:"viewport"`
}

// PlaceResult is the "result" object of a successful Place Details response.
// It is built once at decode time and only read afterwards.
type PlaceResult struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          *Geometry          `json:"geometry,omitempty"` // nil when the API omits it
	Types             []string           `json:"types,omitempty"`
	URL               string             `json:"url,omitempty"`
	Vicinity          string             `json:"vicinity,omitempty"`
	UTCOffset         *int               `json:"utc_offset,omitempty"` // minutes
}

// Component returns the first address component tagged with tag.
// Components keep the order of the payload, so on duplicate tags the earliest one wins.
func (p *PlaceResult) Component(tag string) (AddressComponent, bool) {
	for _, ac := range p.AddressComponents {
		if ac.HasType(tag) {
			return ac, true
		}
	}

	return AddressComponent{}, false
}

// LongName returns the long name of the first component tagged with tag.
func (p *PlaceResult) LongName(tag string) (string, bool) {
	ac, ok := p.Component(tag)
	if !ok {
		return "", false
	}

	return ac.LongName, true
}

// ShortName returns the short name of the first component tagged with tag.
func (p *PlaceResult) ShortName(tag string) (string, bool) {
	ac, ok := p.Component(tag)
	if !ok {
		return "", false
	}

	return ac.ShortName, true
}

func (p *PlaceResult) StreetNumber() (string, bool) { return p.LongName(TypeStreetNumber) }

func (p *PlaceResult) Route() (string, bool) { return p.LongName(TypeRoute) }

func (p *PlaceResult) Sublocality() (string, bool) { return p.LongName(TypeSublocality) }

func (p *PlaceResult) Neighborhood() (string, bool) { return p.LongName(TypeNeighborhood) }

func (p *PlaceResult) Premise() (string, bool) { return p.LongName(TypePremise) }

func (p *PlaceResult) PostalCode() (string, bool) { return p.LongName(TypePostalCode) }

func (p *PlaceResult) PostalCodeSuffix() (string, bool) { return p.LongName(TypePostalCodeSuffix) }

// City returns the "locality" component.
func (p *PlaceResult) City() (string, bool) { return p.LongName(TypeLocality) }

// State returns the "administrative_area_level_1" component.
func (p *PlaceResult) State() (string, bool) { return p.LongName(TypeAdminAreaLevel1) }

// StateCode is the short form of State, e.g. "CA".
func (p *PlaceResult) StateCode() (string, bool) { return p.ShortName(TypeAdminAreaLevel1) }

// County returns the "administrative_area_level_2" component.
func (p *PlaceResult) County() (string, bool) { return p.LongName(TypeAdminAreaLevel2) }

func (p *PlaceResult) Country() (string, bool) { return p.LongName(TypeCountry) }

// CountryCode is the short form of Country, an ISO 3166-1 alpha-2 code.
func (p *PlaceResult) CountryCode() (string, bool) { return p.ShortName(TypeCountry) }
