package utils

import (
	"fmt"
	"strings"

	ua "github.com/mileusna/useragent"
)

// ParseUserAgent extracts browser, OS and device class from a User-Agent string
func ParseUserAgent(userAgent string) (browser, os, device string) {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Browser", "Unknown OS", "Unknown Device"
	}

	parsedUA := ua.Parse(userAgent)

	browser = strings.TrimSpace(parsedUA.Name)
	if browser == "" {
		browser = "Unknown Browser"
	}

	os = strings.TrimSpace(parsedUA.OS)
	if os == "" {
		os = "Unknown OS"
	}

	switch {
	case parsedUA.Bot:
		device = "Bot"
	case parsedUA.Tablet:
		device = "Tablet"
	case parsedUA.Mobile:
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, os, device
}

// DeviceLabel renders a User-Agent as "Browser on OS (Device)".
func DeviceLabel(userAgent string) string {
	browser, os, device := ParseUserAgent(userAgent)
	return fmt.Sprintf("%s on %s (%s)", browser, os, device)
}
