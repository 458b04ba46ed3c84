package models

// ResolvedPlace is what gets stored for a task once its place id was resolved.
// Fields the API did not provide are left empty.
type ResolvedPlace struct {
	FormattedAddress string
	City             string
	PostalCode       string
	CountryCode      string
	Coordinates      *Coordinates // nil when the response had no geometry
}
