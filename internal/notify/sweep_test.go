package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/model"
)

type fakeStore struct {
	mosques     []model.Mosque
	days        map[string]model.PrayerDay
	mosquePrefs map[int][]model.SubscriberPrefs
	subPrefs    map[int]map[int]model.AlertPrefs
	subscribed  map[int][]int

	dayErr   map[int]error
	prefsErr map[int]error
}

var _ db.Store = (*fakeStore)(nil)

func dayKey(mosqueID int, day string) string { return fmt.Sprintf("%d/%s", mosqueID, day) }

func (f *fakeStore) ListMosques() ([]model.Mosque, error) { return f.mosques, nil }

func (f *fakeStore) GetMosqueByID(id int) (*model.Mosque, error) {
	for i := range f.mosques {
		if f.mosques[i].ID == id {
			return &f.mosques[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetSubscriberByID(int) (*model.Subscriber, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetSubscriberByEmail(string) (*model.Subscriber, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetPrayerDay(mosqueID int, day string) (model.PrayerDay, error) {
	if err := f.dayErr[mosqueID]; err != nil {
		return model.PrayerDay{}, err
	}
	if pd, ok := f.days[dayKey(mosqueID, day)]; ok {
		return pd, nil
	}
	return model.PrayerDay{MosqueID: mosqueID, Day: day}, nil
}

func (f *fakeStore) GetAlertPrefs(subscriberID, mosqueID int) (model.AlertPrefs, error) {
	if prefs, ok := f.subPrefs[subscriberID][mosqueID]; ok {
		return prefs, nil
	}
	return model.AlertPrefs{SubscriberID: subscriberID, MosqueID: mosqueID, Prayers: map[string]model.AlertPref{}}, nil
}

func (f *fakeStore) ListMosqueAlertPrefs(mosqueID int) ([]model.SubscriberPrefs, error) {
	if err := f.prefsErr[mosqueID]; err != nil {
		return nil, err
	}
	return f.mosquePrefs[mosqueID], nil
}

func (f *fakeStore) ListSubscribedMosques(subscriberID int) ([]int, error) {
	return f.subscribed[subscriberID], nil
}

type scheduledTask struct {
	name    string
	payload DispatchPayload
	fireAt  time.Time
}

// recordingScheduler stands in for the queue: first submission of a name
// wins, repeats are duplicates.
type recordingScheduler struct {
	seen  map[string]bool
	tasks []scheduledTask
	fail  map[string]error
}

func newRecorder() *recordingScheduler {
	return &recordingScheduler{seen: map[string]bool{}, fail: map[string]error{}}
}

func (r *recordingScheduler) Schedule(_ context.Context, name string, payload DispatchPayload, fireAt time.Time) (Outcome, error) {
	if err := r.fail[name]; err != nil {
		return 0, err
	}
	if r.seen[name] {
		return OutcomeDuplicate, nil
	}
	r.seen[name] = true
	r.tasks = append(r.tasks, scheduledTask{name: name, payload: payload, fireAt: fireAt})
	return OutcomeScheduled, nil
}

func newTestSweeper(store db.Store, sched AlertScheduler, loc *time.Location, now time.Time) *Sweeper {
	s := NewSweeper(store, sched, loc)
	s.now = func() time.Time { return now }
	return s
}

const token42 = "token-42"

// one mosque, one subscriber with a device, preferences across the day.
func scenarioStore() *fakeStore {
	tok := token42
	return &fakeStore{
		mosques: []model.Mosque{{ID: 3, Name: "Masjid An-Noor"}},
		days: map[string]model.PrayerDay{
			dayKey(3, "2025-06-10"): testDay(),
		},
		mosquePrefs: map[int][]model.SubscriberPrefs{
			3: {{SubscriberID: 42, PushToken: &tok, Prayers: allPrefs()}},
		},
		subPrefs: map[int]map[int]model.AlertPrefs{
			42: {3: {SubscriberID: 42, MosqueID: 3, Prayers: allPrefs()}},
		},
		subscribed: map[int][]int{42: {3}},
		dayErr:     map[int]error{},
		prefsErr:   map[int]error{},
	}
}

func TestSweepAll_SchedulesRemainingAlerts(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	rec := newRecorder()
	sweeper := newTestSweeper(scenarioStore(), rec, time.UTC, now)

	sweeper.SweepAll(context.Background())

	// dhuhr athan, asr iqama, maghrib athan are still ahead at 10:00
	require.Len(t, rec.tasks, 3)

	first := rec.tasks[0]
	assert.Equal(t, DeriveTaskName("dhuhr", AlertAthan, 3, token42, first.fireAt), first.name)
	assert.Equal(t, token42, first.payload.PushToken)
	assert.Equal(t, "Dhuhr at Masjid An-Noor", first.payload.Title)
	assert.Equal(t, "3", first.payload.Data["mosque_id"])
	assert.Equal(t, "athan", first.payload.Data["alert"])
	assert.True(t, first.fireAt.After(now))
}

func TestSweepAll_RerunYieldsOnlyDuplicates(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	rec := newRecorder()

	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())
	require.Len(t, rec.tasks, 3)

	// racing and repeated triggers land on the same derived names
	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())
	newTestSweeper(store, rec, time.UTC, now.Add(time.Minute)).SweepAll(context.Background())
	assert.Len(t, rec.tasks, 3)
}

func TestSweepAll_SkipsSubscriberWithoutToken(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	empty := ""
	store.mosquePrefs[3] = []model.SubscriberPrefs{
		{SubscriberID: 51, PushToken: nil, Prayers: allPrefs()},
		{SubscriberID: 52, PushToken: &empty, Prayers: allPrefs()},
	}
	rec := newRecorder()

	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())
	assert.Empty(t, rec.tasks)
}

// a trigger firing after the day's last alert resolves nothing and
// completes without error.
func TestSweepAll_EverythingPastYieldsNothing(t *testing.T) {
	now := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	rec := newRecorder()

	newTestSweeper(scenarioStore(), rec, time.UTC, now).SweepAll(context.Background())
	assert.Empty(t, rec.tasks)
}

func TestSweepAll_UnpublishedDayIsSkipped(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	delete(store.days, dayKey(3, "2025-06-10"))
	rec := newRecorder()

	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())
	assert.Empty(t, rec.tasks)
}

func TestSweepAll_MosqueFailureDoesNotStopOthers(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	store.mosques = append(store.mosques, model.Mosque{ID: 7, Name: "Central Mosque"})
	tok := "token-60"
	store.days[dayKey(7, "2025-06-10")] = model.PrayerDay{
		MosqueID: 7,
		Day:      "2025-06-10",
		Prayers: []model.PrayerTime{
			{Name: "isha", AthanAt: tp(time.Date(2025, 6, 10, 21, 0, 0, 0, time.UTC))},
		},
	}
	store.mosquePrefs[7] = []model.SubscriberPrefs{
		{SubscriberID: 60, PushToken: &tok, Prayers: map[string]model.AlertPref{"isha": {OnAthan: true}}},
	}
	store.prefsErr[3] = errors.New("connection reset")
	rec := newRecorder()

	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())

	// mosque 3 failed, mosque 7 still went through
	require.Len(t, rec.tasks, 1)
	assert.Contains(t, rec.tasks[0].name, "isha")
	assert.Contains(t, rec.tasks[0].name, "-7-")
}

func TestSweepAll_ScheduleFailureDoesNotStopOthers(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	rec := newRecorder()

	dhuhrName := DeriveTaskName("dhuhr", AlertAthan, 3, token42, time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC))
	rec.fail[dhuhrName] = errors.New("queue unreachable")

	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())

	// the other two alerts still made it
	assert.Len(t, rec.tasks, 2)
}

func TestSweepSubscriber_OnlyTouchesOwnMosques(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	store.mosques = append(store.mosques, model.Mosque{ID: 7, Name: "Central Mosque"})
	store.days[dayKey(7, "2025-06-10")] = model.PrayerDay{
		MosqueID: 7,
		Day:      "2025-06-10",
		Prayers: []model.PrayerTime{
			{Name: "isha", AthanAt: tp(time.Date(2025, 6, 10, 21, 0, 0, 0, time.UTC))},
		},
	}
	rec := newRecorder()

	newTestSweeper(store, rec, time.UTC, now).SweepSubscriber(context.Background(), 42, token42)

	require.Len(t, rec.tasks, 3)
	for _, task := range rec.tasks {
		assert.Contains(t, task.name, "-3-")
		assert.NotContains(t, task.name, "-7-")
	}
}

func TestSweepSubscriber_FreshTokenYieldsFreshNames(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	store := scenarioStore()
	rec := newRecorder()

	// nightly sweep ran against the old token
	newTestSweeper(store, rec, time.UTC, now).SweepAll(context.Background())
	require.Len(t, rec.tasks, 3)

	// device re-registered with a new token and resynced
	newTestSweeper(store, rec, time.UTC, now).SweepSubscriber(context.Background(), 42, "token-42-reinstalled")

	require.Len(t, rec.tasks, 6)
	for _, task := range rec.tasks[3:] {
		assert.Contains(t, task.name, HashToken("token-42-reinstalled"))
		assert.Equal(t, "token-42-reinstalled", task.payload.PushToken)
	}
}

func TestSweepSubscriber_NoTokenDoesNothing(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	rec := newRecorder()

	newTestSweeper(scenarioStore(), rec, time.UTC, now).SweepSubscriber(context.Background(), 42, "")
	assert.Empty(t, rec.tasks)
}

// the civil day key follows the operating timezone, not the server's zone.
func TestSweepAll_DayKeyFollowsOperatingZone(t *testing.T) {
	pkt := time.FixedZone("PKT", 5*3600)
	// 21:00 UTC on June 10 is already June 11 in PKT
	now := time.Date(2025, 6, 10, 21, 0, 0, 0, time.UTC)

	tok := token42
	store := &fakeStore{
		mosques: []model.Mosque{{ID: 3, Name: "Masjid An-Noor"}},
		days: map[string]model.PrayerDay{
			dayKey(3, "2025-06-11"): {
				MosqueID: 3,
				Day:      "2025-06-11",
				Prayers: []model.PrayerTime{
					{Name: "fajr", AthanAt: tp(time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC))},
				},
			},
		},
		mosquePrefs: map[int][]model.SubscriberPrefs{
			3: {{SubscriberID: 42, PushToken: &tok, Prayers: map[string]model.AlertPref{"fajr": {OnAthan: true}}}},
		},
		dayErr:   map[int]error{},
		prefsErr: map[int]error{},
	}
	rec := newRecorder()

	newTestSweeper(store, rec, pkt, now).SweepAll(context.Background())

	require.Len(t, rec.tasks, 1)
	assert.Contains(t, rec.tasks[0].name, "fajr")
}
