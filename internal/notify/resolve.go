// Package notify turns published prayer timetables into scheduled push
// notifications. It owns the fire-time rules, the task naming that keeps
// delivery at-most-once, and the sweeps that walk mosques and subscribers.
package notify

import (
	"time"

	"github.com/minaret-io/minaret/internal/model"
)

// AlertKind names which of a prayer's two instants an alert tracks.
type AlertKind string

const (
	AlertAthan AlertKind = "athan"
	AlertIqama AlertKind = "iqama"
)

// IqamaLeadTime is how far ahead of the congregation instant an iqama
// alert fires, so people can still make it to the mosque.
const IqamaLeadTime = 30 * time.Minute

// Alert is one notification to be scheduled: a prayer, which instant it
// tracks, and the absolute instant it should fire.
type Alert struct {
	Prayer string
	Kind   AlertKind
	FireAt time.Time
}

// ResolveAlerts walks one day's timetable against one subscriber's choices
// and returns every alert whose fire instant is still ahead of now.
//
// Athan alerts fire at the published athan instant. Iqama alerts fire
// IqamaLeadTime before the congregation instant. Prayers the subscriber
// holds no choice for, prayers missing the relevant instant, and instants
// already past all resolve to nothing. Comparisons are between absolute
// instants, so resolution is unaffected by the server's local timezone.
func ResolveAlerts(day model.PrayerDay, prefs map[string]model.AlertPref, now time.Time) []Alert {
	var alerts []Alert
	for _, p := range day.Prayers {
		pref, ok := prefs[p.Name]
		if !ok {
			continue
		}
		if pref.OnAthan && p.AthanAt != nil && p.AthanAt.After(now) {
			alerts = append(alerts, Alert{Prayer: p.Name, Kind: AlertAthan, FireAt: *p.AthanAt})
		}
		if pref.OnIqama && p.IqamaAt != nil {
			fireAt := p.IqamaAt.Add(-IqamaLeadTime)
			if fireAt.After(now) {
				alerts = append(alerts, Alert{Prayer: p.Name, Kind: AlertIqama, FireAt: fireAt})
			}
		}
	}
	return alerts
}
