package theme

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// LuminanceThreshold is the highest luminance that still gets light text.
	LuminanceThreshold = 186.0
	// GradientLightnessStep is how much lighter the second gradient stop is, in percent.
	GradientLightnessStep = 15
	// FallbackColor is used when a base color cannot be parsed.
	FallbackColor = "#ffffff"
)

// ErrInvalidHex is returned for anything that is not #rrggbb, rrggbb or #rrggbbaa.
var ErrInvalidHex = errors.New("invalid hex color")

// TextColor tells the presentation layer which text color keeps contrast.
type TextColor string

const (
	TextLight TextColor = "light"
	TextDark  TextColor = "dark"
)

type rgb struct {
	r, g, b uint8
}

func parseHex(hex string) (rgb, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(s) {
	case 6:
	case 8:
		// alpha is ignored
		s = s[:6]
	default:
		return rgb{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return rgb{r: uint8(v >> 16), g: uint8(v >> 8), b: uint8(v)}, nil
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// HexToHSL converts a hex color to hue in degrees [0,360) and saturation and
// lightness in whole percent.
func HexToHSL(hex string) (h, s, l int, err error) {
	c, err := parseHex(hex)
	if err != nil {
		return 0, 0, 0, err
	}
	r := float64(c.r) / 255
	g := float64(c.g) / 255
	b := float64(c.b) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	lf := (max + min) / 2
	if max == min {
		return 0, 0, int(math.Round(lf * 100)), nil
	}

	d := max - min
	var sf, hf float64
	if lf > 0.5 {
		sf = d / (2 - max - min)
	} else {
		sf = d / (max + min)
	}
	switch max {
	case r:
		hf = (g - b) / d
		if g < b {
			hf += 6
		}
	case g:
		hf = (b-r)/d + 2
	default:
		hf = (r-g)/d + 4
	}

	h = int(math.Round(hf*60)) % 360
	return h, int(math.Round(sf * 100)), int(math.Round(lf * 100)), nil
}

// HSLToHex converts HSL back to #rrggbb. Saturation and lightness are clamped
// to [0,100]; hue wraps around.
func HSLToHex(h, s, l int) string {
	h %= 360
	if h < 0 {
		h += 360
	}
	hf := float64(h) / 360
	sf := float64(clamp(s, 0, 100)) / 100
	lf := float64(clamp(l, 0, 100)) / 100

	if sf == 0 {
		v := to8(lf)
		return rgb{v, v, v}.hex()
	}

	var q float64
	if lf < 0.5 {
		q = lf * (1 + sf)
	} else {
		q = lf + sf - lf*sf
	}
	p := 2*lf - q

	return rgb{
		r: to8(hueToRGB(p, q, hf+1.0/3)),
		g: to8(hueToRGB(p, q, hf)),
		b: to8(hueToRGB(p, q, hf-1.0/3)),
	}.hex()
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func to8(x float64) uint8 {
	return uint8(clamp(int(math.Round(x*255)), 0, 255))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustLightness shifts the lightness of hex by delta percent, clamped to [0,100].
func AdjustLightness(hex string, delta int) (string, error) {
	h, s, l, err := HexToHSL(hex)
	if err != nil {
		return "", err
	}
	return HSLToHex(h, s, clamp(l+delta, 0, 100)), nil
}

// RelativeLuminance is the perceived brightness 0.299R + 0.587G + 0.114B over 8-bit channels.
func RelativeLuminance(hex string) (float64, error) {
	c, err := parseHex(hex)
	if err != nil {
		return 0, err
	}
	return 0.299*float64(c.r) + 0.587*float64(c.g) + 0.114*float64(c.b), nil
}

// PickTextColor returns TextLight for backgrounds at or below LuminanceThreshold.
func PickTextColor(hex string) (TextColor, error) {
	lum, err := RelativeLuminance(hex)
	if err != nil {
		return "", err
	}
	if lum <= LuminanceThreshold {
		return TextLight, nil
	}
	return TextDark, nil
}

// DeriveGradient returns the base color and a stop GradientLightnessStep lighter.
func DeriveGradient(hex string) ([2]string, error) {
	c, err := parseHex(hex)
	if err != nil {
		return [2]string{}, err
	}
	base := c.hex()
	light, err := AdjustLightness(base, GradientLightnessStep)
	if err != nil {
		return [2]string{}, err
	}
	return [2]string{base, light}, nil
}
