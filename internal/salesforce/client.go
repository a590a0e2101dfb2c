package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/procureflow/procureflow/internal/config"
)

const (
	defaultAPIVersion = "v62.0"
	defaultTimeout    = 30 * time.Second

	// Access tokens last about two hours; refresh well before that.
	tokenLifetime = 90 * time.Minute
)

// CaseFilters narrow a case listing. Empty fields are ignored.
type CaseFilters struct {
	Status        string
	CaseNumber    string
	RequestorName string
	VendorName    string
}

// CaseList is the result of a case query.
type CaseList struct {
	Cases     []CaseView `json:"cases"`
	TotalSize int        `json:"totalSize"`
	Done      bool       `json:"done"`
}

// Client is a read-only Salesforce case client using the
// resource-owner password grant.
type Client struct {
	cfg        config.Salesforce
	oauth      *oauth2.Config
	httpClient *http.Client

	mu          sync.Mutex
	token       *oauth2.Token
	tokenExpiry time.Time
	instanceURL string
}

// New creates a client from configuration. The client is usable even
// when unconfigured; calls then fail with ErrNotConfigured.
func New(cfg config.Salesforce) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: strings.TrimRight(cfg.InstanceURL, "/") + "/services/oauth2/token",
			},
		},
		httpClient:  &http.Client{Timeout: defaultTimeout},
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.InstanceURL != "" && c.cfg.ClientID != "" &&
		c.cfg.ClientSecret != "" && c.cfg.Username != "" && c.cfg.Password != ""
}

// authenticate returns a valid access token, reusing the cached one
// until it nears expiry.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && time.Now().Before(c.tokenExpiry) {
		return c.token.AccessToken, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	// The security token is appended to the password, as Salesforce
	// requires for the username/password flow.
	token, err := c.oauth.PasswordCredentialsToken(ctx, c.cfg.Username, c.cfg.Password+c.cfg.SecurityToken)
	if err != nil {
		return "", errors.Wrap(err, "failed to authenticate with Salesforce")
	}

	c.token = token
	c.tokenExpiry = time.Now().Add(tokenLifetime)

	// Salesforce reports the org's API host alongside the token.
	if instance, ok := token.Extra("instance_url").(string); ok && instance != "" {
		c.instanceURL = strings.TrimRight(instance, "/")
	}

	log.Debug().Str("instance_url", c.instanceURL).Msg("Salesforce authentication successful")

	return token.AccessToken, nil
}

// soqlEscape makes a value safe inside a single-quoted SOQL literal.
func soqlEscape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)

	return strings.ReplaceAll(value, `'`, `\'`)
}

func buildQuery(filters CaseFilters) string {
	query := "SELECT Id,CaseNumber,Subject,Status,Substatus__c,Buyer_Name__c," +
		"Requestor_Name__c,Grand_Total_Final_Order__c,Start_Date_Time__c,End_Date_Time__c," +
		"Ticket_Type__c,Spotdraft_ID__c,Vendor_Name__c,Start_Date__c,Execution_Date__c," +
		"Stamp_Paper_Date__c,days_to_expiry__c,expiry_status__c,Contract_Status__c," +
		"TPI_Applicability__c,AC_Applicability__c,DD_Status__c FROM Case"

	var clauses []string

	if filters.Status != "" {
		clauses = append(clauses, "Status = '"+soqlEscape(filters.Status)+"'")
	}

	if filters.CaseNumber != "" {
		clauses = append(clauses, "CaseNumber = '"+soqlEscape(filters.CaseNumber)+"'")
	}

	if filters.RequestorName != "" {
		clauses = append(clauses, "Requestor_Name__c = '"+soqlEscape(filters.RequestorName)+"'")
	}

	if filters.VendorName != "" {
		clauses = append(clauses, "Vendor_Name__c = '"+soqlEscape(filters.VendorName)+"'")
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	return query + " ORDER BY CreatedDate DESC"
}

type queryResponse struct {
	TotalSize int          `json:"totalSize"`
	Done      bool         `json:"done"`
	Records   []CaseRecord `json:"records"`
}

// ListCases queries Salesforce cases matching the filters, newest first.
func (c *Client) ListCases(ctx context.Context, filters CaseFilters) (*CaseList, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.instanceURL + "/services/data/" + c.cfg.APIVersion +
		"/query/?q=" + url.QueryEscape(buildQuery(filters))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build Salesforce request")
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query Salesforce")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return nil, errors.Errorf("Salesforce query failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode Salesforce response")
	}

	list := &CaseList{
		Cases:     make([]CaseView, 0, len(payload.Records)),
		TotalSize: payload.TotalSize,
		Done:      payload.Done,
	}

	for i := range payload.Records {
		list.Cases = append(list.Cases, payload.Records[i].PSRView())
	}

	return list, nil
}

// GetCase fetches a single case by its case number.
func (c *Client) GetCase(ctx context.Context, caseNumber string) (*CaseView, error) {
	list, err := c.ListCases(ctx, CaseFilters{CaseNumber: caseNumber})
	if err != nil {
		return nil, err
	}

	if len(list.Cases) == 0 {
		return nil, ErrCaseNotFound
	}

	return &list.Cases[0], nil
}

// Test verifies the connection by authenticating and running an
// unfiltered query.
func (c *Client) Test(ctx context.Context) (*CaseList, error) {
	list, err := c.ListCases(ctx, CaseFilters{})
	if err != nil {
		return nil, err
	}

	log.Info().Int("total_cases", list.TotalSize).Msg("Salesforce connection test successful")

	return list, nil
}

// InstanceURL reports the API host the client currently targets.
func (c *Client) InstanceURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.instanceURL
}
