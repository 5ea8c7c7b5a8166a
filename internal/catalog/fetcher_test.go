package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/janekbaraniewski/usagebridge/internal/core"
)

func gatewayServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetch_OrdersAndNormalizes(t *testing.T) {
	body := `{"data": [
  {"id": "z/unranked-b", "name": "Beta"},
  {"id": "a/second", "name": "Second", "preferred_index": 2},
  {"id": "z/unranked-a", "name": "Alpha"},
  {"id": "   "},
  {"id": "a/first", "name": "First", "preferred_index": 0},
  {"id": "z/no-name"},
  {"id": "a/second", "name": "Dup", "preferred_index": 5}
]}`
	server := gatewayServer(t, http.StatusOK, body)

	models, err := NewFetcher(server.URL+"/api/v1/", nil, "").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	var ids []string
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	want := []string{"a/first", "a/second", "z/unranked-a", "z/unranked-b", "z/no-name"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestFetch_SendsAPIKeyWhenConfigured(t *testing.T) {
	var gotAuth, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"data":[{"id":"m"}]}`))
	}))
	defer server.Close()

	if _, err := NewFetcher(server.URL, nil, "sk-or-1").Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotAuth != "Bearer sk-or-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.HasPrefix(gotUA, "usagebridge/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetch_HTTPErrorCarriesStatus(t *testing.T) {
	server := gatewayServer(t, http.StatusInternalServerError, `{"error":"down"}`)

	_, err := NewFetcher(server.URL+"/api/v1", nil, "").Fetch(context.Background())
	var fe *core.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", fe.StatusCode)
	}
}

func TestFetch_AllInvalidIsEmptyCatalog(t *testing.T) {
	server := gatewayServer(t, http.StatusOK, `{"data":[{"id":""},{"id":"  "},{"name":"x"}]}`)

	_, err := NewFetcher(server.URL+"/api/v1", nil, "").Fetch(context.Background())
	var empty *core.EmptyCatalogError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyCatalogError, got %v", err)
	}
	if empty.RawCount != 3 {
		t.Errorf("RawCount = %d, want 3", empty.RawCount)
	}
	var fe *core.FetchError
	if !errors.As(err, &fe) {
		t.Error("EmptyCatalogError should also be a FetchError")
	}
}

func TestFetch_EmptyDataIsEmptyCatalog(t *testing.T) {
	server := gatewayServer(t, http.StatusOK, `{"data":[]}`)

	_, err := NewFetcher(server.URL+"/api/v1", nil, "").Fetch(context.Background())
	var empty *core.EmptyCatalogError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyCatalogError, got %v", err)
	}
}

func TestFetch_InvalidJSON(t *testing.T) {
	server := gatewayServer(t, http.StatusOK, `<html>`)

	_, err := NewFetcher(server.URL+"/api/v1", nil, "").Fetch(context.Background())
	var fe *core.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestFetchRaw_AcceptsBareArray(t *testing.T) {
	server := gatewayServer(t, http.StatusOK, `[{"id":"b","name":"B"},{"id":"a","name":"A"}]`)

	records, err := NewFetcher(server.URL+"/api/v1", nil, "").FetchRaw(context.Background())
	if err != nil {
		t.Fatalf("FetchRaw error: %v", err)
	}
	if len(records) != 2 || records[0].Get("id").String() != "a" {
		t.Errorf("records = %v", records)
	}
}

func TestSortRecords_Idempotent(t *testing.T) {
	raw := `[
  {"id":"c","name":"Gamma","preferred_index":1},
  {"id":"b","name":"beta"},
  {"id":"a","name":"Alpha"},
  {"id":"d","preferred_index":1},
  {"id":"e","name":"Echo","preferred_index":"3"},
  {"id":"f","name":"Zed","preferred_index":0}
]`
	records := gjson.Parse(raw).Array()
	SortRecords(records)
	first := idsOf(records)

	SortRecords(records)
	if second := idsOf(records); !reflect.DeepEqual(first, second) {
		t.Errorf("re-sort changed order: %v -> %v", first, second)
	}

	// "d" has no name and sorts by id; "Gamma" < "d" byte-wise. Missing and
	// non-numeric indexes tie at the bottom, ordered by name.
	want := []string{"f", "c", "d", "a", "e", "b"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("order = %v, want %v", first, want)
	}
}

func TestSortRecords_BlankOrPaddedNamesUseNormalizedName(t *testing.T) {
	raw := `[
  {"id":"zeta/model","name":"   "},
  {"id":"mid/model","name":"  Middle  "},
  {"id":"alpha/model","name":42},
  {"id":"  beta/model  "}
]`
	records := gjson.Parse(raw).Array()
	SortRecords(records)

	want := []string{"Middle", "alpha/model", "beta/model", "zeta/model"}
	got := make([]string, len(records))
	for i, r := range records {
		m, ok := Normalize(r)
		if !ok {
			t.Fatalf("record %d rejected", i)
		}
		got[i] = m.Name
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func idsOf(records []gjson.Result) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get("id").String()
	}
	return out
}
