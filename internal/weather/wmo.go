package weather

type condition struct {
	desc string
	icon string
}

var wmoConditions = map[int]condition{
	0:  {"Clear sky", "☀️"},
	1:  {"Mainly clear", "🌤️"},
	2:  {"Partly cloudy", "⛅"},
	3:  {"Overcast", "☁️"},
	45: {"Foggy", "🌫️"},
	48: {"Foggy", "🌫️"},
	51: {"Light drizzle", "🌦️"},
	53: {"Moderate drizzle", "🌦️"},
	55: {"Dense drizzle", "🌧️"},
	56: {"Freezing drizzle", "🌧️"},
	57: {"Freezing drizzle", "🌧️"},
	61: {"Slight rain", "🌦️"},
	63: {"Moderate rain", "🌧️"},
	65: {"Heavy rain", "🌧️"},
	66: {"Freezing rain", "🌧️"},
	67: {"Freezing rain", "🌧️"},
	71: {"Slight snow", "🌨️"},
	73: {"Moderate snow", "🌨️"},
	75: {"Heavy snow", "❄️"},
	77: {"Snow grains", "❄️"},
	80: {"Slight showers", "🌦️"},
	81: {"Moderate showers", "🌧️"},
	82: {"Violent showers", "⛈️"},
	85: {"Slight snow showers", "🌨️"},
	86: {"Heavy snow showers", "❄️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm with hail", "⛈️"},
	99: {"Thunderstorm with hail", "⛈️"},
}

var unknownCondition = condition{"Unknown", "🌡️"}

// WMOCodeToDescIcon maps a WMO weather code to a description and emoji icon.
func WMOCodeToDescIcon(code int) (string, string) {
	c, ok := wmoConditions[code]
	if !ok {
		c = unknownCondition
	}
	return c.desc, c.icon
}
