package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildPush_Athan(t *testing.T) {
	alert := Alert{Prayer: "maghrib", Kind: AlertAthan, FireAt: time.Unix(1766000000, 0)}
	p := BuildPush("tok", "Masjid An-Noor", 3, alert)

	assert.Equal(t, "tok", p.PushToken)
	assert.Equal(t, "Maghrib at Masjid An-Noor", p.Title)
	assert.Equal(t, "It is time for Maghrib at Masjid An-Noor", p.Body)
	assert.Equal(t, map[string]string{
		"mosque_id": "3",
		"prayer":    "maghrib",
		"alert":     "athan",
	}, p.Data)
}

func TestBuildPush_Iqama(t *testing.T) {
	alert := Alert{Prayer: "isha", Kind: AlertIqama, FireAt: time.Unix(1766000000, 0)}
	p := BuildPush("tok", "Central Mosque", 7, alert)

	assert.Equal(t, "Isha at Central Mosque", p.Title)
	assert.Equal(t, "Isha congregation starts in 30 minutes at Central Mosque", p.Body)
	assert.Equal(t, "iqama", p.Data["alert"])
}
