package utils

import (
	"strconv"
	"strings"
)

// FormatCoordinate renders a coordinate with the shortest exact decimal form.
func FormatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// BuildMapLink appends "lat,lng" to base. The base is expected to end with the
// query parameter that takes the position.
func BuildMapLink(base string, latitude, longitude float64) string {
	return base + FormatCoordinate(latitude) + "," + FormatCoordinate(longitude)
}

// AlertTitle is the notification title shown to the trusted contact.
func AlertTitle(callerName string) string {
	return strings.TrimSpace(callerName) + AlertTitleSuffix
}

// AlertBody is the notification body. It always carries the map link.
func AlertBody(protocol, mapLink, address string) string {
	var b strings.Builder
	b.WriteString("Alerta de pânico, protocolo ")
	b.WriteString(protocol)
	b.WriteString(". Localização: ")
	b.WriteString(mapLink)
	if address != "" {
		b.WriteString(" (")
		b.WriteString(address)
		b.WriteString(")")
	}
	return b.String()
}
