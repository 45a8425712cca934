package model

// AlertPref selects which of a prayer's two instants the subscriber
// wants an alert for.
type AlertPref struct {
	OnAthan bool `db:"on_athan" json:"on_athan"`
	OnIqama bool `db:"on_iqama" json:"on_iqama"`
}

// AlertPrefs is one subscriber's per-prayer alert choices for one mosque.
// Mutated by the subscriber through the app; read-only to the scheduler.
type AlertPrefs struct {
	SubscriberID int
	MosqueID     int
	Prayers      map[string]AlertPref
}

// SubscriberPrefs pairs a subscriber (with their current push token, if any)
// with their alert choices for one mosque. Produced by the per-mosque
// prefs join during a global sweep.
type SubscriberPrefs struct {
	SubscriberID int
	PushToken    *string
	Prayers      map[string]AlertPref
}
