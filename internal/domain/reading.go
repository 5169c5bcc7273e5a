package domain

// GlucoseReading is a single sensor glucose value from the CGM service.
type GlucoseReading struct {
	// Value is in mg/dL.
	Value int
	// Trend is the raw direction code, e.g. "Flat" or "DoubleDown".
	Trend string
}
