package notify

import (
	"strconv"
	"strings"
)

// DispatchPayload is the body a fired task POSTs to the dispatch endpoint.
// It carries everything needed to send the push; the endpoint itself
// stays stateless.
type DispatchPayload struct {
	PushToken string            `json:"push_token"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}

// BuildPush renders the notification for one alert. Copy is intentionally
// plain; clients decide presentation from the data fields.
func BuildPush(pushToken, mosqueName string, mosqueID int, alert Alert) DispatchPayload {
	prayer := titleCase(alert.Prayer)

	var body string
	switch alert.Kind {
	case AlertIqama:
		body = prayer + " congregation starts in 30 minutes at " + mosqueName
	default:
		body = "It is time for " + prayer + " at " + mosqueName
	}

	return DispatchPayload{
		PushToken: pushToken,
		Title:     prayer + " at " + mosqueName,
		Body:      body,
		Data: map[string]string{
			"mosque_id": strconv.Itoa(mosqueID),
			"prayer":    alert.Prayer,
			"alert":     string(alert.Kind),
		},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
