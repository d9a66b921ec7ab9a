package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
)

type doCall struct {
	method string
	path   string
	query  url.Values
	body   any
}

type fakeDoer struct {
	calls []doCall
	env   *models.Envelope
	err   error
}

func (f *fakeDoer) Do(_ context.Context, method, path string, query url.Values, body any) (*models.Envelope, error) {
	f.calls = append(f.calls, doCall{method, path, query, body})
	return f.env, f.err
}

func data(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestFleetList(t *testing.T) {
	d := &fakeDoer{env: &models.Envelope{Success: true, Total: 42, Data: data(t, []map[string]any{
		{"id": "v1", "plate": "AB-1"}, {"id": "v2", "plate": "AB-2"},
	})}}
	svc := NewFleetService(d)

	page, err := svc.List(context.Background(), models.ResourceVehicles, models.Query{Page: 2, Limit: 2, Search: "AB"})
	require.NoError(t, err)

	assert.Equal(t, 42, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "v2", page.Items[1].ID())

	call := d.calls[0]
	assert.Equal(t, "GET", call.method)
	assert.Equal(t, "/vehicles", call.path)
	assert.Equal(t, "limit=2&page=2&search=AB", call.query.Encode())
}

func TestFleetList_EmptyAndTotalFallback(t *testing.T) {
	d := &fakeDoer{env: &models.Envelope{Success: true}}
	page, err := NewFleetService(d).List(context.Background(), models.ResourceDrivers, models.Query{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)

	d.env = &models.Envelope{Success: true, Data: data(t, []map[string]any{{"id": "d1"}})}
	page, err = NewFleetService(d).List(context.Background(), models.ResourceDrivers, models.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestFleetList_Malformed(t *testing.T) {
	d := &fakeDoer{env: &models.Envelope{Success: true, Data: json.RawMessage(`{"not":"a list"}`)}}
	_, err := NewFleetService(d).List(context.Background(), models.ResourceFuel, models.Query{})
	require.ErrorIs(t, err, client.ErrMalformedResponse)
}

func TestFleetCRUD(t *testing.T) {
	d := &fakeDoer{env: &models.Envelope{Success: true, Data: data(t, map[string]any{"id": "g 1", "name": "Depot"})}}
	svc := NewFleetService(d)
	ctx := context.Background()

	rec, err := svc.Get(ctx, models.ResourceGeofences, "g 1")
	require.NoError(t, err)
	assert.Equal(t, "Depot", rec["name"])

	_, err = svc.Create(ctx, models.ResourceGeofences, models.Record{"name": "Depot"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.ResourceGeofences, "g 1", models.Record{"name": "Depot 2"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, models.ResourceGeofences, "g 1"))

	got := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		got = append(got, c.method+" "+c.path)
	}
	assert.Equal(t, []string{
		"GET /geofences/g%201",
		"POST /geofences",
		"PUT /geofences/g%201",
		"DELETE /geofences/g%201",
	}, got)
	assert.Equal(t, models.Record{"name": "Depot 2"}, d.calls[2].body)
}

func TestFleetErrorsPassThrough(t *testing.T) {
	apiErr := &client.APIError{Status: 404, Message: "Vehicle not found"}
	d := &fakeDoer{err: apiErr}
	svc := NewFleetService(d)
	ctx := context.Background()

	_, err := svc.Get(ctx, models.ResourceVehicles, "x")
	require.ErrorIs(t, err, apiErr)
	assert.Equal(t, "Vehicle not found", client.MessageOf(err, "fallback"))

	err = svc.Delete(ctx, models.ResourceVehicles, "x")
	var target *client.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 404, target.Status)
}
