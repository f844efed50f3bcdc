package devapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewStore()
	require.NoError(t, Seed(s))
	srv := httptest.NewServer(Router(s, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Health(t *testing.T) {
	srv := newSeededServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Grid(t *testing.T) {
	srv := newSeededServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/fixtures/1/grid", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var grid types.FixtureGrid
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&grid))
	assert.Len(t, grid.Cells, 10)

	resp = do(t, http.MethodGet, srv.URL+"/api/fixtures/9/grid", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "Fixture not found", e.Detail)
}

func TestRouter_GamesQuery(t *testing.T) {
	srv := newSeededServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/games?q=skull", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var games []types.GameWithPlacement
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, 92415, games[0].BGGID)
	require.NotNil(t, games[0].Slot)
	assert.Equal(t, "r0c4", *games[0].Slot)
}

func TestRouter_UpsertAndClear(t *testing.T) {
	srv := newSeededServer(t)

	resp := do(t, http.MethodPut, srv.URL+"/api/placements", `{"fixture_id":1,"slot":"r1c4","game_id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, srv.URL+"/api/placements", `{"fixture_id":1,"slot":"r5c0","game_id":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/placements/1/r1c4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out["deleted"])
}

func TestRouter_CreateFixture(t *testing.T) {
	srv := newSeededServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/fixtures", `{"name":"Kallax","rows":4,"cols":4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f types.Fixture
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	assert.Equal(t, 2, f.ID)

	resp = do(t, http.MethodPost, srv.URL+"/api/fixtures", `{"name":"","rows":0,"cols":4}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
