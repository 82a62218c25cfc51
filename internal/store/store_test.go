package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/db"
	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/store"
	"jobmate/jobboard-service/internal/tracker"
)

var baseTime = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

// openTestDB migrates and truncates the database named by TEST_DATABASE_URL.
// These tests are skipped without it and in -short mode.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	_, err := db.MigrateUp(url)
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE job_sources, job_listings, search_profiles, recommendation_results, applications, application_notes CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedSource(t *testing.T, sources *store.Sources, name, url string) *model.JobSource {
	t.Helper()
	src, err := model.NewJobSource(name, model.FeedKindJSON, "remotive", url, baseTime)
	require.NoError(t, err)
	require.NoError(t, sources.Save(context.Background(), src))
	return src
}

func seedListing(t *testing.T, listings *store.Listings, sourceID, externalID string, raw model.RawJob, ingested time.Time) *model.JobListing {
	t.Helper()
	raw.ExternalID = externalID
	if raw.Title == "" {
		raw.Title = "Backend Engineer"
	}
	if raw.URL == "" {
		raw.URL = "https://jobs.example.com/" + externalID
	}
	l, err := model.NewJobListing(sourceID, raw, ingested)
	require.NoError(t, err)
	require.NoError(t, listings.Save(context.Background(), l))
	return l
}

func TestSources_SaveFindAndDuplicate(t *testing.T) {
	pool := openTestDB(t)
	sources := store.NewSources(pool)
	ctx := context.Background()

	src := seedSource(t, sources, "Remotive", "https://remotive.com/api/remote-jobs")

	got, err := sources.FindByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "REMOTIVE", got.Provider)
	assert.True(t, got.Enabled)

	got, err = sources.FindByURL(ctx, src.BaseURL)
	require.NoError(t, err)
	assert.Equal(t, src.ID, got.ID)

	_, err = sources.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrSourceNotFound)
	_, err = sources.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrSourceNotFound)

	dup, err := model.NewJobSource("Again", model.FeedKindJSON, "remotive", src.BaseURL, baseTime)
	require.NoError(t, err)
	assert.ErrorIs(t, sources.Save(ctx, dup), model.ErrDuplicateSource)

	src.SetEnabled(false, baseTime.Add(time.Hour))
	src.MarkIngested(baseTime.Add(time.Hour))
	require.NoError(t, sources.Save(ctx, src))

	enabled, err := sources.FindAllEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	all, err := sources.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].LastIngestedAt)
}

func TestListings_SaveExistsAndFind(t *testing.T) {
	pool := openTestDB(t)
	sources := store.NewSources(pool)
	listings := store.NewListings(pool)
	ctx := context.Background()

	a := seedSource(t, sources, "Remotive", "https://remotive.com/api/remote-jobs")
	b := seedSource(t, sources, "WWR", "https://weworkremotely.com/remote-jobs.rss")

	seedListing(t, listings, a.ID, "1", model.RawJob{Category: "Engineering", Location: "Berlin, Germany", Salary: "70k EUR", PublishedAt: baseTime}, baseTime)
	seedListing(t, listings, a.ID, "2", model.RawJob{Category: "Design", Location: "Paris", PublishedAt: baseTime.Add(time.Hour)}, baseTime)
	seedListing(t, listings, b.ID, "1", model.RawJob{Location: "Remote", PublishedAt: baseTime.Add(2 * time.Hour)}, baseTime)

	exists, err := listings.Exists(ctx, a.ID, "1")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = listings.Exists(ctx, a.ID, "3")
	require.NoError(t, err)
	assert.False(t, exists)

	// A concurrent duplicate updates in place.
	seedListing(t, listings, a.ID, "1", model.RawJob{Title: "Senior Backend Engineer", Category: "Engineering", Location: "Berlin, Germany"}, baseTime)

	all, err := listings.Find(ctx, catalog.JobFilter{}, 0, 20)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "WWR", all[0].SourceName, "newest posting first")

	byCategory, err := listings.Find(ctx, catalog.JobFilter{Category: "Engineering"}, 0, 20)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Senior Backend Engineer", byCategory[0].Title)

	byLocation, err := listings.Find(ctx, catalog.JobFilter{Location: "berlin"}, 0, 20)
	require.NoError(t, err)
	assert.Len(t, byLocation, 1)

	bySalary, err := listings.Find(ctx, catalog.JobFilter{Salary: "70K"}, 0, 20)
	require.NoError(t, err)
	assert.Len(t, bySalary, 1)

	bySource, err := listings.Find(ctx, catalog.JobFilter{SourceID: b.ID}, 0, 20)
	require.NoError(t, err)
	assert.Len(t, bySource, 1)

	wildcard, err := listings.Find(ctx, catalog.JobFilter{Location: "%"}, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, wildcard, "LIKE metacharacters match literally")

	paged, err := listings.Find(ctx, catalog.JobFilter{}, 2, 20)
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	candidates, err := listings.FindCandidates(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, candidates, 2, "uncategorised listings are not candidates")
}

func TestRecommendations_SaveBatchReplaces(t *testing.T) {
	pool := openTestDB(t)
	sources := store.NewSources(pool)
	listings := store.NewListings(pool)
	recs := store.NewRecommendations(pool)
	ctx := context.Background()

	src := seedSource(t, sources, "Remotive", "https://remotive.com/api/remote-jobs")
	j1 := seedListing(t, listings, src.ID, "1", model.RawJob{Category: "Eng"}, baseTime)
	j2 := seedListing(t, listings, src.ID, "2", model.RawJob{Category: "Eng"}, baseTime)

	result := func(jobID string, score float64) model.RecommendationResult {
		r, err := model.NewRecommendationResult("u1", jobID, model.ScoreBreakdown{Total: score, Role: score}, "Relevant job in Remote.", baseTime)
		require.NoError(t, err)
		return *r
	}

	require.NoError(t, recs.SaveBatch(ctx, "u1", []model.RecommendationResult{result(j1.ID, 0.5), result(j2.ID, 1)}))
	got, err := recs.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, j2.ID, got[0].JobID)

	require.NoError(t, recs.SaveBatch(ctx, "u1", []model.RecommendationResult{result(j1.ID, 0)}))
	got, err = recs.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].TotalScore)

	match, err := recs.FindSpecificMatch(ctx, "u1", j1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relevant job in Remote.", match.Explanation)

	_, err = recs.FindSpecificMatch(ctx, "u1", j2.ID)
	assert.ErrorIs(t, err, model.ErrRecommendationNotFound)

	require.NoError(t, recs.SaveBatch(ctx, "u1", nil))
	got, err = recs.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProfiles_CRUD(t *testing.T) {
	pool := openTestDB(t)
	profiles := store.NewProfiles(pool)
	ctx := context.Background()

	p := model.SearchProfile{UserID: "u1", Categories: []string{"Eng"}, Locations: []string{}, UpdatedAt: baseTime}
	require.NoError(t, profiles.Create(ctx, &p))
	assert.ErrorIs(t, profiles.Create(ctx, &p), model.ErrDuplicateProfile)

	p.AlertsEnabled = true
	p.MinimumSalary = 40000
	require.NoError(t, profiles.Update(ctx, &p))

	got, err := profiles.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eng"}, got.Categories)
	assert.Equal(t, 40000, got.MinimumSalary)

	ids, err := profiles.FindAlertUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)

	_, err = profiles.FindByUserID(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrProfileNotFound)
	ghost := model.EmptyProfile("ghost")
	assert.ErrorIs(t, profiles.Update(ctx, &ghost), model.ErrProfileNotFound)
}

func TestApplications_Lifecycle(t *testing.T) {
	pool := openTestDB(t)
	sources := store.NewSources(pool)
	listings := store.NewListings(pool)
	apps := store.NewApplications(pool)
	svc := tracker.NewService(apps, nil, nil)
	ctx := context.Background()

	src := seedSource(t, sources, "Remotive", "https://remotive.com/api/remote-jobs")
	job := seedListing(t, listings, src.ID, "1", model.RawJob{}, baseTime)

	app, created, err := svc.Track(ctx, "u1", job.ID)
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = svc.Track(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = svc.Track(ctx, "u1", uuid.NewString())
	assert.ErrorIs(t, err, model.ErrListingNotFound)

	_, err = svc.MoveStatus(ctx, "u1", app.ID, "APPLIED")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, "u1", app.ID, "Sent the portfolio")
	require.NoError(t, err)

	got, err := apps.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusApplied, got.Status)
	assert.NotNil(t, got.AppliedAt)
	require.Len(t, got.History, 1)
	assert.Equal(t, tracker.StatusSaved, got.History[0].From)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Sent the portfolio", got.Notes[0].Content)

	list, err := apps.ListByUser(ctx, "u1", tracker.StatusApplied)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Notes, 1)

	list, err = apps.ListByUser(ctx, "u1", tracker.StatusSaved)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = apps.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)
}
