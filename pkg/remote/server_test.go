package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/ringer"
	"github.com/borgmon/alarm-clock/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu      sync.Mutex
	ringing *models.Alarm
	err     error
	calls   []string
}

func (c *fakeController) Snooze(id string) error {
	return c.act("snooze", id)
}

func (c *fakeController) Dismiss(id string) error {
	return c.act("dismiss", id)
}

func (c *fakeController) act(kind, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.ringing == nil || c.ringing.ID != id {
		return ringer.ErrNotRinging
	}
	c.calls = append(c.calls, kind+" "+id)
	return nil
}

func (c *fakeController) Ringing() (models.Alarm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ringing == nil {
		return models.Alarm{}, false
	}
	return *c.ringing, true
}

func newTestServer(t *testing.T) (*Server, *store.AlarmStore, *fakeController) {
	t.Helper()
	alarms := store.NewAlarmStore()
	ctl := &fakeController{}
	return NewServer(alarms, ctl, nil), alarms, ctl
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestCreateAndListAlarms(t *testing.T) {
	srv, alarms, _ := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/alarms", `{"time":"06:45","label":"Gym"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Alarm
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.ClockTime{Hour: 6, Minute: 45}, created.Time)
	assert.Equal(t, models.DefaultTone, created.Tone)
	assert.True(t, created.Enabled)
	assert.Equal(t, 1, alarms.Len())

	_, err := alarms.Add(models.ClockTime{Hour: 5, Minute: 0}, "", "")
	require.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/alarms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var list []models.Alarm
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Time.Hour)
	assert.Equal(t, created.ID, list[1].ID)
}

func TestCreateAlarmRejectsBadInput(t *testing.T) {
	srv, alarms, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"bad time", `{"time":"25:00"}`},
		{"missing time", `{"label":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/alarms", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
	assert.Zero(t, alarms.Len())
}

func TestUpdateAndDeleteAlarm(t *testing.T) {
	srv, alarms, _ := newTestServer(t)
	h := srv.Handler()
	alarm, err := alarms.Add(models.ClockTime{Hour: 7, Minute: 0}, "", "")
	require.NoError(t, err)

	rec := do(t, h, http.MethodPatch, "/alarms/"+alarm.ID, `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := alarms.Get(alarm.ID)
	assert.False(t, got.Enabled)

	rec = do(t, h, http.MethodPatch, "/alarms/"+alarm.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/alarms/missing", `{"enabled":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/alarms/"+alarm.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, alarms.Len())

	rec = do(t, h, http.MethodDelete, "/alarms/"+alarm.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRingingAlarmConflicts(t *testing.T) {
	srv, alarms, ctl := newTestServer(t)
	h := srv.Handler()
	alarm, err := alarms.Add(models.ClockTime{Hour: 7, Minute: 0}, "", "")
	require.NoError(t, err)
	ctl.ringing = &alarm

	rec := do(t, h, http.MethodDelete, "/alarms/"+alarm.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeError(t, rec), "is ringing")
	assert.Equal(t, 1, alarms.Len())

	ctl.ringing = nil
	rec = do(t, h, http.MethodDelete, "/alarms/"+alarm.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRingingActions(t *testing.T) {
	srv, _, ctl := newTestServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/ringing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/alarms/abc/snooze", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ringer.ErrNotRinging.Error(), decodeError(t, rec))

	ctl.ringing = &models.Alarm{ID: "abc", Time: models.ClockTime{Hour: 6}, Enabled: true}

	rec = do(t, h, http.MethodGet, "/ringing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ringing models.Alarm
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ringing))
	assert.Equal(t, "abc", ringing.ID)

	rec = do(t, h, http.MethodPost, "/alarms/abc/snooze", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodPost, "/alarms/abc/dismiss", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"snooze abc", "dismiss abc"}, ctl.calls)

	ctl.err = ringer.ErrNotRunning
	rec = do(t, h, http.MethodPost, "/alarms/abc/dismiss", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.Errorf(models.ErrInvalid, "bad"), http.StatusBadRequest},
		{models.Errorf(models.ErrNotFound, "gone"), http.StatusNotFound},
		{models.Errorf(models.ErrConflict, "busy"), http.StatusConflict},
		{models.Errorf(models.ErrInternal, "boom"), http.StatusInternalServerError},
		{context.Canceled, http.StatusInternalServerError},
		{ringer.ErrNotRinging, http.StatusConflict},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func TestEventStream(t *testing.T) {
	broker := NewBroker()
	srv := NewServer(store.NewAlarmStore(), &fakeController{}, broker)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	alarm := models.Alarm{ID: "abc", Time: models.ClockTime{Hour: 7, Minute: 30}, Enabled: true}
	var presenter ringer.Presenter = broker
	presenter.ShowTime(time.Now())
	presenter.ShowRinging(alarm)
	presenter.HideRinging(alarm, ringer.ResolutionSnoozed)

	readEvent := func() (string, Event) {
		var name string
		var ev Event
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			case line == "" && name != "":
				return name, ev
			}
		}
	}

	name, ev := readEvent()
	assert.Equal(t, EventRinging, name)
	require.NotNil(t, ev.Alarm)
	assert.Equal(t, "abc", ev.Alarm.ID)
	assert.False(t, ev.At.IsZero())

	name, ev = readEvent()
	assert.Equal(t, EventResolved, name)
	assert.Equal(t, "snoozed", ev.Resolution)
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()

	b.Notify("Alarm is ringing!", "Gym at 06:45")
	ev := <-ch
	assert.Equal(t, EventNotification, ev.Type)
	assert.Equal(t, "Gym at 06:45", ev.Message)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, func() { b.Notify("x", "y") })
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Notify("t", "m")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
