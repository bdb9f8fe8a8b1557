package theme

import "log"

// Theme is the weather-driven presentation derived from a condition's base color.
type Theme struct {
	Gradient    [2]string `json:"gradient"`
	TextColor   TextColor `json:"textColor"`
	Description string    `json:"description"`
}

// Derive builds a Theme. An unparsable base color is treated like an unknown
// weather code and falls back to white.
func Derive(baseHex, description string) Theme {
	gradient, err := DeriveGradient(baseHex)
	if err != nil {
		log.Printf("WARN: theme base color %q: %v, using %s", baseHex, err, FallbackColor)
		baseHex = FallbackColor
		gradient, _ = DeriveGradient(baseHex)
	}
	text, _ := PickTextColor(gradient[0])
	return Theme{
		Gradient:    gradient,
		TextColor:   text,
		Description: description,
	}
}
