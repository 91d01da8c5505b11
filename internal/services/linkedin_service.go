package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/models"
)

// ErrLinkedInUnavailable wraps every failure of the import webhook.
var ErrLinkedInUnavailable = errors.New("linkedin import unavailable")

// LinkedInProfile is the payload returned by the import webhook.
type LinkedInProfile struct {
	FirstName      string                `json:"firstName"`
	LastName       string                `json:"lastName"`
	Headline       string                `json:"headline"`
	Summary        string                `json:"summary"`
	Location       string                `json:"location"`
	ProfilePicture string                `json:"profilePicture"`
	Positions      []LinkedInPosition    `json:"positions"`
	Certifications []LinkedInCertificate `json:"certifications"`
	Honors         []LinkedInHonor       `json:"honors"`
}

type LinkedInPosition struct {
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type LinkedInCertificate struct {
	Name          string `json:"name"`
	Authority     string `json:"authority"`
	LicenseNumber string `json:"licenseNumber"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
}

type LinkedInHonor struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	IssueDate   string `json:"issueDate"`
	Description string `json:"description"`
}

// ProfileDraft is a member-shaped prefill for the profile form. It is never
// persisted by the import itself.
type ProfileDraft struct {
	FirstName         string                   `json:"first_name"`
	LastName          string                   `json:"last_name"`
	Headline          string                   `json:"headline"`
	Bio               string                   `json:"bio"`
	City              string                   `json:"city"`
	State             string                   `json:"state"`
	Country           string                   `json:"country"`
	ProfilePhoto      string                   `json:"profile_photo"`
	LinkedInURL       string                   `json:"linkedin_url"`
	YearsOfExperience int                      `json:"years_of_experience"`
	Experience        []models.ExperienceEntry `json:"experience"`
	Licenses          []models.License         `json:"licenses"`
	Awards            []models.Award           `json:"awards"`
}

type LinkedInImportRequest struct {
	LinkedInURL string `json:"linkedin_url" validate:"required,url,contains=linkedin.com"`
}

type LinkedInService struct {
	client     *http.Client
	webhookURL string
	secret     string
	now        func() time.Time
	log        *logrus.Entry
}

func NewLinkedInService(cfg config.LinkedInConfig) *LinkedInService {
	return &LinkedInService{
		client:     &http.Client{Timeout: cfg.Timeout},
		webhookURL: cfg.WebhookURL,
		secret:     cfg.WebhookSecret,
		now:        time.Now,
		log:        logrus.WithField("service", "linkedin"),
	}
}

// Import fetches the profile behind req.LinkedInURL and maps it onto a
// member draft.
func (s *LinkedInService) Import(ctx context.Context, req *LinkedInImportRequest) (*ProfileDraft, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	profile, err := s.FetchProfile(ctx, req.LinkedInURL)
	if err != nil {
		return nil, err
	}

	draft := s.TransformProfile(profile)
	draft.LinkedInURL = req.LinkedInURL
	return draft, nil
}

func (s *LinkedInService) FetchProfile(ctx context.Context, linkedinURL string) (*LinkedInProfile, error) {
	if s.webhookURL == "" {
		return nil, fmt.Errorf("%w: webhook not configured", ErrLinkedInUnavailable)
	}

	body, err := json.Marshal(map[string]string{"linkedin_url": linkedinURL})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkedInUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.secret)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkedInUnavailable, err)
	}
	defer resp.Body.Close()

	s.log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("LinkedIn webhook responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: webhook returned %d", ErrLinkedInUnavailable, resp.StatusCode)
	}

	var profile LinkedInProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrLinkedInUnavailable, err)
	}
	return &profile, nil
}

// TransformProfile maps the webhook payload to the member shape. A position
// without an end date is the current one.
func (s *LinkedInService) TransformProfile(profile *LinkedInProfile) *ProfileDraft {
	draft := &ProfileDraft{
		FirstName:    strings.TrimSpace(profile.FirstName),
		LastName:     strings.TrimSpace(profile.LastName),
		Headline:     strings.TrimSpace(profile.Headline),
		Bio:          strings.TrimSpace(profile.Summary),
		ProfilePhoto: profile.ProfilePicture,
		Experience:   []models.ExperienceEntry{},
		Licenses:     []models.License{},
		Awards:       []models.Award{},
	}
	draft.City, draft.State, draft.Country = splitLocation(profile.Location)

	earliest := 0
	for _, p := range profile.Positions {
		entry := models.ExperienceEntry{
			Company:     strings.TrimSpace(p.CompanyName),
			Title:       strings.TrimSpace(p.Title),
			Location:    strings.TrimSpace(p.Location),
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
			Current:     strings.TrimSpace(p.EndDate) == "",
			Description: strings.TrimSpace(p.Description),
		}
		draft.Experience = append(draft.Experience, entry)

		if year := leadingYear(p.StartDate); year > 0 && (earliest == 0 || year < earliest) {
			earliest = year
		}
	}
	if earliest > 0 {
		if years := s.now().Year() - earliest; years > 0 {
			draft.YearsOfExperience = years
		}
	}

	for _, c := range profile.Certifications {
		draft.Licenses = append(draft.Licenses, models.License{
			Name:      strings.TrimSpace(c.Name),
			Issuer:    strings.TrimSpace(c.Authority),
			Number:    strings.TrimSpace(c.LicenseNumber),
			IssuedOn:  c.StartDate,
			ExpiresOn: c.EndDate,
		})
	}

	for _, h := range profile.Honors {
		draft.Awards = append(draft.Awards, models.Award{
			Title:       strings.TrimSpace(h.Title),
			Issuer:      strings.TrimSpace(h.Issuer),
			Year:        leadingYear(h.IssueDate),
			Description: strings.TrimSpace(h.Description),
		})
	}

	return draft
}

// splitLocation reads "City, State, Country"; shorter forms fill from the left.
func splitLocation(location string) (city, state, country string) {
	var parts []string
	for _, p := range strings.Split(location, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
	case 1:
		city = parts[0]
	case 2:
		city, country = parts[0], parts[1]
	default:
		city, state, country = parts[0], parts[1], parts[len(parts)-1]
	}
	return city, state, country
}

// leadingYear extracts YYYY from dates like "2019", "2019-04" or "2019-04-01".
func leadingYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
