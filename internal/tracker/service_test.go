package tracker_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/tracker"
)

const jobID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type memRepo struct {
	apps    map[string]tracker.Application
	creates int
}

func newMemRepo() *memRepo { return &memRepo{apps: map[string]tracker.Application{}} }

func (m *memRepo) FindByID(_ context.Context, id string) (*tracker.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, model.ErrApplicationNotFound
	}
	return &a, nil
}

func (m *memRepo) FindByUserAndJob(_ context.Context, userID, jobID string) (*tracker.Application, error) {
	for _, a := range m.apps {
		if a.UserID == userID && a.JobID == jobID {
			return &a, nil
		}
	}
	return nil, model.ErrApplicationNotFound
}

func (m *memRepo) ListByUser(_ context.Context, userID string, status tracker.Status) ([]tracker.Application, error) {
	var out []tracker.Application
	for _, a := range m.apps {
		if a.UserID == userID && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdatedAt.After(out[j].LastUpdatedAt) })
	return out, nil
}

func (m *memRepo) Create(_ context.Context, app *tracker.Application) error {
	for _, a := range m.apps {
		if a.UserID == app.UserID && a.JobID == app.JobID {
			return fmt.Errorf("application %w", model.ErrDuplicate)
		}
	}
	m.apps[app.ID] = *app
	m.creates++
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, app *tracker.Application, _ tracker.StatusChange) error {
	m.apps[app.ID] = *app
	return nil
}

func (m *memRepo) AddNote(_ context.Context, appID string, note tracker.Note, at time.Time) error {
	a := m.apps[appID]
	a.Notes = append(a.Notes, note)
	a.LastUpdatedAt = at
	m.apps[appID] = a
	return nil
}

type recordingPublisher struct {
	channels []string
	payloads []map[string]any
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload map[string]any) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

func tracked(t *testing.T, svc *tracker.Service, userID string) *tracker.Application {
	t.Helper()
	app, created, err := svc.Track(context.Background(), userID, jobID)
	require.NoError(t, err)
	require.True(t, created)
	return app
}

func TestTrack_StartsSavedAndIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := tracker.NewService(repo, nil, nil)

	app := tracked(t, svc, "u1")
	assert.Equal(t, tracker.StatusSaved, app.Status)
	assert.Nil(t, app.AppliedAt)

	again, created, err := svc.Track(context.Background(), "u1", jobID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, app.ID, again.ID)
	assert.Equal(t, 1, repo.creates)
}

func TestTrack_RejectsBadJobID(t *testing.T) {
	svc := tracker.NewService(newMemRepo(), nil, nil)
	for _, id := range []string{"", "  ", "not-a-uuid"} {
		_, _, err := svc.Track(context.Background(), "u1", id)
		assert.ErrorIs(t, err, model.ErrInvalidInput, "%q", id)
	}
}

func TestMoveStatus_StampsAppliedAtAndPublishes(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := tracker.NewService(repo, pub, nil)
	ctx := context.Background()
	app := tracked(t, svc, "u1")

	moved, err := svc.MoveStatus(ctx, "u1", app.ID, "APPLIED")
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusApplied, moved.Status)
	require.NotNil(t, moved.AppliedAt)
	appliedAt := *moved.AppliedAt

	moved, err = svc.MoveStatus(ctx, "u1", app.ID, "INTERVIEWING")
	require.NoError(t, err)
	assert.Equal(t, appliedAt, *moved.AppliedAt, "appliedAt is only stamped once")
	require.Len(t, moved.History, 2)
	assert.Equal(t, tracker.StatusApplied, moved.History[1].From)

	assert.Equal(t, []string{"EVENT_CARD_MOVED", "EVENT_CARD_MOVED"}, pub.channels)
	assert.Equal(t, "INTERVIEWING", pub.payloads[1]["to"])
	assert.Equal(t, tracker.StatusInterviewing, repo.apps[app.ID].Status)
}

func TestMoveStatus_Errors(t *testing.T) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := tracker.NewService(repo, pub, nil)
	ctx := context.Background()
	app := tracked(t, svc, "u1")

	_, err := svc.MoveStatus(ctx, "u1", app.ID, "HIRED")
	assert.ErrorIs(t, err, model.ErrInvalidInput, "unknown status")

	_, err = svc.MoveStatus(ctx, "u1", app.ID, "OFFER")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve, "skip-level transition")
	assert.Contains(t, ve.Msg, "SAVED → OFFER")

	_, err = svc.MoveStatus(ctx, "intruder", app.ID, "APPLIED")
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = svc.MoveStatus(ctx, "u1", "missing", "APPLIED")
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)

	assert.Empty(t, pub.channels)
	assert.Equal(t, tracker.StatusSaved, repo.apps[app.ID].Status)
}

func TestMoveStatus_TerminalStaysTerminal(t *testing.T) {
	svc := tracker.NewService(newMemRepo(), nil, nil)
	ctx := context.Background()
	app := tracked(t, svc, "u1")

	_, err := svc.MoveStatus(ctx, "u1", app.ID, "REJECTED")
	require.NoError(t, err)
	_, err = svc.MoveStatus(ctx, "u1", app.ID, "APPLIED")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAddNote(t *testing.T) {
	repo := newMemRepo()
	svc := tracker.NewService(repo, nil, nil)
	ctx := context.Background()
	app := tracked(t, svc, "u1")

	_, err := svc.AddNote(ctx, "u1", app.ID, " ok ")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	got, err := svc.AddNote(ctx, "u1", app.ID, "  Called the recruiter  ")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Called the recruiter", got.Notes[0].Content)

	_, err = svc.AddNote(ctx, "someone-else", app.ID, "hello")
	assert.ErrorIs(t, err, model.ErrForbidden)

	stored, err := svc.Get(ctx, "u1", app.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
}

func TestList_FiltersByStatus(t *testing.T) {
	repo := newMemRepo()
	svc := tracker.NewService(repo, nil, nil)
	ctx := context.Background()

	app := tracked(t, svc, "u1")
	_, err := svc.MoveStatus(ctx, "u1", app.ID, "APPLIED")
	require.NoError(t, err)
	repo.apps["other"] = tracker.Application{ID: "other", UserID: "u2", JobID: jobID, Status: tracker.StatusSaved}

	all, err := svc.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	saved, err := svc.List(ctx, "u1", "SAVED")
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = svc.List(ctx, "u1", "bogus")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
