package driven

// ConfigStore holds the persisted settings as dotted keys
// ("index.namespace", "chain.k").
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the value for key, or "" if unset or not a string.
	GetString(key string) string

	// GetInt returns the value for key, or 0 if unset or not numeric.
	GetInt(key string) int

	// GetFloat returns the value for key, or 0 if unset or not numeric.
	// Integers are widened.
	GetFloat(key string) float64

	// Update sets every key in values and persists them in one write.
	// A nil value removes the key. On error nothing is applied.
	Update(values map[string]any) error

	// Path identifies where settings are persisted.
	Path() string
}
