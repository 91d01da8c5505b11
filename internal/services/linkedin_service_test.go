package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unetra-global/member-portal-sub000/internal/config"
)

const linkedInPayload = `{
  "firstName": "Ravi",
  "lastName": "Menon",
  "headline": "Chartered Accountant",
  "summary": "Indirect tax specialist.",
  "location": "Kochi, Kerala, India",
  "positions": [
    {"companyName": "Menon Associates", "title": "Founder", "startDate": "2015-06"},
    {"companyName": "Big Four LLP", "title": "Manager", "startDate": "2010-01", "endDate": "2015-05"}
  ],
  "certifications": [
    {"name": "FCA", "authority": "ICAI", "licenseNumber": "123456", "startDate": "2012-01"}
  ],
  "honors": [
    {"title": "Best Speaker", "issuer": "ICAI Kochi", "issueDate": "2019-11-02"}
  ]
}`

func newLinkedInTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hook-secret", r.Header.Get("Authorization"))

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://www.linkedin.com/in/ravi-menon", req["linkedin_url"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newLinkedInService(url string) *LinkedInService {
	svc := NewLinkedInService(config.LinkedInConfig{
		WebhookURL:    url,
		WebhookSecret: "hook-secret",
		Timeout:       2 * time.Second,
	})
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestLinkedInImportTransformsProfile(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusOK, linkedInPayload)
	svc := newLinkedInService(server.URL)

	draft, err := svc.Import(context.Background(), &LinkedInImportRequest{LinkedInURL: "https://www.linkedin.com/in/ravi-menon"})
	require.NoError(t, err)

	assert.Equal(t, "Ravi", draft.FirstName)
	assert.Equal(t, "Indirect tax specialist.", draft.Bio)
	assert.Equal(t, "Kochi", draft.City)
	assert.Equal(t, "Kerala", draft.State)
	assert.Equal(t, "India", draft.Country)
	assert.Equal(t, 14, draft.YearsOfExperience)
	assert.Equal(t, "https://www.linkedin.com/in/ravi-menon", draft.LinkedInURL)

	require.Len(t, draft.Experience, 2)
	assert.True(t, draft.Experience[0].Current)
	assert.False(t, draft.Experience[1].Current)

	require.Len(t, draft.Licenses, 1)
	assert.Equal(t, "ICAI", draft.Licenses[0].Issuer)
	assert.Equal(t, "123456", draft.Licenses[0].Number)

	require.Len(t, draft.Awards, 1)
	assert.Equal(t, 2019, draft.Awards[0].Year)
}

func TestLinkedInImportUpstreamFailure(t *testing.T) {
	server := newLinkedInTestServer(t, http.StatusBadGateway, `{"error":"upstream"}`)
	svc := newLinkedInService(server.URL)

	_, err := svc.Import(context.Background(), &LinkedInImportRequest{LinkedInURL: "https://www.linkedin.com/in/ravi-menon"})
	assert.ErrorIs(t, err, ErrLinkedInUnavailable)
}

func TestLinkedInImportRejectsBadURL(t *testing.T) {
	svc := newLinkedInService("http://127.0.0.1:1")

	_, err := svc.Import(context.Background(), &LinkedInImportRequest{LinkedInURL: "https://example.com/profile"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLinkedInImportNotConfigured(t *testing.T) {
	svc := newLinkedInService("")

	_, err := svc.FetchProfile(context.Background(), "https://www.linkedin.com/in/ravi-menon")
	assert.ErrorIs(t, err, ErrLinkedInUnavailable)
}

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		in                    string
		city, state, country string
	}{
		{"", "", "", ""},
		{"Mumbai", "Mumbai", "", ""},
		{"Mumbai, India", "Mumbai", "", "India"},
		{"Mumbai, Maharashtra, India", "Mumbai", "Maharashtra", "India"},
	}
	for _, tt := range tests {
		city, state, country := splitLocation(tt.in)
		assert.Equal(t, tt.city, city, tt.in)
		assert.Equal(t, tt.state, state, tt.in)
		assert.Equal(t, tt.country, country, tt.in)
	}
}
