package weather

import "sort"

// Condition describes a weather code for display.
type Condition struct {
	Description string `json:"description"`
	BaseColor   string `json:"baseColor"`
}

// UnknownCondition is returned for codes missing from the catalog.
var UnknownCondition = Condition{Description: "unknown", BaseColor: "#ffffff"}

// conditions maps Open-Meteo WMO weather codes to descriptions and background colors.
var conditions = map[int]Condition{
	0:  {"Ясно", "#fdf6b3"},
	1:  {"Малооблачно", "#f3edb9"},
	2:  {"Облачно с прояснениями", "#bbdefb"},
	3:  {"Пасмурно", "#4f8ec2"},
	45: {"Туман", "#e0e0e0"},
	48: {"Изморозь", "#e0e0e0"},
	51: {"Морось", "#64b5f6"},
	53: {"Морось, средняя", "#64b5f6"},
	55: {"Морось, сильная", "#42a5f5"},
	61: {"Дождь", "#5969fd"},
	63: {"Дождь, средний", "#6876fa"},
	65: {"Дождь, сильный", "#3140c9"},
	71: {"Снег", "#ffffff"},
	73: {"Снег, средний", "#f5f5f5"},
	75: {"Снег, сильный", "#eeeeee"},
	77: {"Снежная крупа", "#e0e0e0"},
	80: {"Небольшой дождь", "#51b0fd"},
	81: {"Дождь", "#4e66f1"},
	82: {"Ливень", "#096fc9"},
	85: {"Небольшой снег", "#ffffff"},
	86: {"Снег", "#f5f5f5"},
	95: {"Гроза", "#424242"},
	96: {"Гроза с небольшим градом", "#424242"},
	99: {"Гроза с сильным градом", "#212121"},
}

// Describe returns the description and base color for code.
// Unknown codes never fail; they map to UnknownCondition.
func Describe(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return UnknownCondition
}

// KnownCodes returns all catalog codes in ascending order.
func KnownCodes() []int {
	codes := make([]int, 0, len(conditions))
	for code := range conditions {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
