package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procureflow/procureflow/internal/config"
)

func TestBuildQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query := buildQuery(CaseFilters{})

		assert.True(t, strings.HasPrefix(query, "SELECT Id,CaseNumber,Subject,"))
		assert.NotContains(t, query, "WHERE")
		assert.True(t, strings.HasSuffix(query, "ORDER BY CreatedDate DESC"))
	})

	t.Run("all filters", func(t *testing.T) {
		query := buildQuery(CaseFilters{
			Status:        "Closed",
			CaseNumber:    "00001042",
			RequestorName: "Rita",
			VendorName:    "Acme Corp",
		})

		assert.Contains(t, query, "Status = 'Closed'")
		assert.Contains(t, query, "CaseNumber = '00001042'")
		assert.Contains(t, query, "Requestor_Name__c = 'Rita'")
		assert.Contains(t, query, "Vendor_Name__c = 'Acme Corp'")
		assert.Contains(t, query, " AND ")
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		query := buildQuery(CaseFilters{VendorName: "O'Brien & Sons"})

		assert.Contains(t, query, `Vendor_Name__c = 'O\'Brien & Sons'`)
	})
}

func TestPSRView(t *testing.T) {
	record := CaseRecord{
		ID:         "500xx0001",
		CaseNumber: "00001042",
		Subject:    "Datacenter cabling",
		Status:     "Open",
		TicketType: "Infrastructure",
		GrandTotal: 2500000,
	}

	view := record.PSRView()

	assert.Equal(t, "00001042", view.PSRID)
	assert.Equal(t, "Datacenter cabling", view.Title)
	assert.Equal(t, "Infrastructure", view.Department)
	assert.Equal(t, "salesforce", view.Source)
	assert.Equal(t, 2500000.0, view.Budget.Amount)
	assert.Equal(t, "INR", view.Budget.Currency)
	assert.Equal(t, "INR 2.5M", view.Budget.Display)
	assert.NotEmpty(t, view.CreatedAt)
}

func TestPSRViewZeroTotal(t *testing.T) {
	view := (&CaseRecord{CaseNumber: "00001043", Subject: "Renewal"}).PSRView()

	assert.Equal(t, "INR 0", view.Budget.Display)
	assert.Equal(t, "N/A", view.Department)
}

func TestClientNotConfigured(t *testing.T) {
	client := New(config.Salesforce{})

	assert.False(t, client.Configured())

	_, err := client.ListCases(context.Background(), CaseFilters{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.GetCase(context.Background(), "00001042")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// newStubServer fakes the token and query endpoints of a Salesforce org.
func newStubServer(t *testing.T, records []CaseRecord) (*httptest.Server, *[]string) {
	t.Helper()

	var queries []string

	mux := http.NewServeMux()

	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.FormValue("grant_type"))
		assert.Equal(t, "integration@example.com", r.FormValue("username"))
		assert.Equal(t, "hunter2TOKEN123", r.FormValue("password"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "stub-access-token",
			"token_type":   "Bearer",
		})
	})

	mux.HandleFunc("/services/data/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stub-access-token", r.Header.Get("Authorization"))

		query, err := url.QueryUnescape(r.URL.RawQuery)
		require.NoError(t, err)
		queries = append(queries, query)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(queryResponse{
			TotalSize: len(records),
			Done:      true,
			Records:   records,
		})
	})

	return httptest.NewServer(mux), &queries
}

func newStubClient(server *httptest.Server) *Client {
	return New(config.Salesforce{
		InstanceURL:   server.URL,
		Username:      "integration@example.com",
		Password:      "hunter2",
		SecurityToken: "TOKEN123",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
	})
}

func TestListCases(t *testing.T) {
	server, queries := newStubServer(t, []CaseRecord{
		{CaseNumber: "00001042", Subject: "Cabling", GrandTotal: 1800000},
		{CaseNumber: "00001043", Subject: "Renewal"},
	})
	defer server.Close()

	client := newStubClient(server)

	list, err := client.ListCases(context.Background(), CaseFilters{Status: "Open"})
	require.NoError(t, err)

	assert.Equal(t, 2, list.TotalSize)
	require.Len(t, list.Cases, 2)
	assert.Equal(t, "00001042", list.Cases[0].PSRID)
	assert.Equal(t, "INR 1.8M", list.Cases[0].Budget.Display)
	assert.Equal(t, "salesforce", list.Cases[0].Source)

	require.Len(t, *queries, 1)
	assert.Contains(t, (*queries)[0], "Status = 'Open'")
}

func TestListCasesReusesToken(t *testing.T) {
	server, _ := newStubServer(t, nil)
	defer server.Close()

	client := newStubClient(server)

	_, err := client.ListCases(context.Background(), CaseFilters{})
	require.NoError(t, err)

	first := client.tokenExpiry

	_, err = client.ListCases(context.Background(), CaseFilters{})
	require.NoError(t, err)

	assert.Equal(t, first, client.tokenExpiry, "cached token should be reused")
}

func TestGetCase(t *testing.T) {
	server, queries := newStubServer(t, []CaseRecord{
		{CaseNumber: "00001042", Subject: "Cabling"},
	})
	defer server.Close()

	client := newStubClient(server)

	view, err := client.GetCase(context.Background(), "00001042")
	require.NoError(t, err)
	assert.Equal(t, "00001042", view.CaseNumber)

	require.Len(t, *queries, 1)
	assert.Contains(t, (*queries)[0], "CaseNumber = '00001042'")
}

func TestGetCaseNotFound(t *testing.T) {
	server, _ := newStubServer(t, nil)
	defer server.Close()

	client := newStubClient(server)

	_, err := client.GetCase(context.Background(), "00009999")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}
