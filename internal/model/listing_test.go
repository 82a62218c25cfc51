package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobboard-service/internal/model"
)

var ingestedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validRaw() model.RawJob {
	return model.RawJob{
		ExternalID:  "42",
		Title:       "Backend Engineer",
		Company:     "Acme",
		URL:         "https://jobs.example.com/42",
		Location:    "Berlin",
		PublishedAt: time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC),
	}
}

func TestNewJobListing_Valid(t *testing.T) {
	l, err := model.NewJobListing("s1", validRaw(), ingestedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "s1", l.SourceID)
	assert.Equal(t, "42", l.ExternalID)
	assert.Equal(t, "Backend Engineer", l.Title)
	assert.Equal(t, time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC), l.PostedAt)
	assert.Equal(t, ingestedAt, l.IngestedAt)
	assert.Nil(t, l.Category)
	assert.Nil(t, l.Salary)
}

func TestNewJobListing_TrimsFields(t *testing.T) {
	raw := validRaw()
	raw.ExternalID = "  42 "
	raw.Title = "\tBackend Engineer  "
	raw.URL = " https://jobs.example.com/42 "
	raw.Category = " Engineering "

	l, err := model.NewJobListing("s1", raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "42", l.ExternalID)
	assert.Equal(t, "Backend Engineer", l.Title)
	assert.Equal(t, "https://jobs.example.com/42", l.URL)
	require.NotNil(t, l.Category)
	assert.Equal(t, "Engineering", *l.Category)
}

func TestNewJobListing_Defaults(t *testing.T) {
	raw := validRaw()
	raw.Company = "  "
	raw.Location = ""
	raw.PublishedAt = time.Time{}

	l, err := model.NewJobListing("s1", raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, model.DefaultCompany, l.Company)
	assert.Equal(t, model.DefaultLocation, l.Location)
	assert.Equal(t, ingestedAt, l.PostedAt, "zero publication date falls back to ingestion time")
	assert.Equal(t, model.WorkModeRemote, l.WorkMode)
}

func TestNewJobListing_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RawJob)
	}{
		{"missing external id", func(r *model.RawJob) { r.ExternalID = "" }},
		{"blank external id", func(r *model.RawJob) { r.ExternalID = "   " }},
		{"empty title", func(r *model.RawJob) { r.Title = "" }},
		{"blank title", func(r *model.RawJob) { r.Title = " \n " }},
		{"empty url", func(r *model.RawJob) { r.URL = "" }},
		{"relative url", func(r *model.RawJob) { r.URL = "/jobs/42" }},
		{"not a url", func(r *model.RawJob) { r.URL = "apply by email" }},
		{"javascript url", func(r *model.RawJob) { r.URL = "javascript:alert(1)" }},
		{"ftp url", func(r *model.RawJob) { r.URL = "ftp://jobs.example.com/42" }},
		{"url without host", func(r *model.RawJob) { r.URL = "https://" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			l, err := model.NewJobListing("s1", raw, ingestedAt)

			assert.Nil(t, l)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
			var verr *model.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestNewJobListing_WorkMode(t *testing.T) {
	tests := []struct {
		explicit string
		location string
		want     model.WorkMode
	}{
		{"", "Remote", model.WorkModeRemote},
		{"", "Anywhere in Europe", model.WorkModeRemote},
		{"", "Paris (Hybrid)", model.WorkModeHybrid},
		{"", "Berlin office", model.WorkModeOnsite},
		{"", "Berlin", model.WorkModeOnsite},
		{"Hybrid", "Remote", model.WorkModeHybrid},
		{"on-site", "Remote", model.WorkModeOnsite},
		{"REMOTE", "Lyon", model.WorkModeRemote},
		{"full_time", "Remote, US", model.WorkModeRemote},
	}
	for _, tt := range tests {
		t.Run(tt.explicit+"/"+tt.location, func(t *testing.T) {
			raw := validRaw()
			raw.WorkMode = tt.explicit
			raw.Location = tt.location

			l, err := model.NewJobListing("s1", raw, ingestedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.WorkMode)
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, model.IsHTTPURL("https://example.com/feed"))
	assert.True(t, model.IsHTTPURL("http://example.com"))
	assert.False(t, model.IsHTTPURL(""))
	assert.False(t, model.IsHTTPURL("example.com/feed"))
	assert.False(t, model.IsHTTPURL("mailto:jobs@example.com"))
	assert.False(t, model.IsHTTPURL("http:///nohost"))
}
