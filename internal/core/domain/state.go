package domain

// State is the terminal outcome of an orchestrated workflow. Every
// collaborator failure resolves to one of these displayable states;
// nothing in this layer is fatal to the process.
type State string

const (
	// Map workflows.
	StateLoaded State = "loaded"
	StateEmpty  State = "empty"
	StateFailed State = "failed"

	// Create/edit workflows.
	StateSaved         State = "saved"
	StateSaveFailed    State = "save_failed"
	StateGeocodeEmpty  State = "geocode_empty"
	StateGeocodeFailed State = "geocode_failed"
)
