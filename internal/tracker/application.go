package tracker

import (
	"time"

	"github.com/google/uuid"
)

// MinNoteLength is the shortest note content accepted.
const MinNoteLength = 3

// Application is one job a user is following on the board.
type Application struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	JobID         string         `json:"jobId"`
	Status        Status         `json:"status"`
	AppliedAt     *time.Time     `json:"appliedAt"`
	History       []StatusChange `json:"historyLog"`
	Notes         []Note         `json:"notes"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt"`
}

// StatusChange is one entry of an application's history log.
type StatusChange struct {
	From Status    `json:"from"`
	To   Status    `json:"to"`
	At   time.Time `json:"at"`
}

// Note is a free-text remark attached to an application.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func newApplication(userID, jobID string, now time.Time) *Application {
	now = now.UTC()
	return &Application{
		ID:            uuid.NewString(),
		UserID:        userID,
		JobID:         jobID,
		Status:        StatusSaved,
		History:       []StatusChange{},
		Notes:         []Note{},
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// moveTo applies an allowed transition. The first move to APPLIED stamps
// AppliedAt.
func (a *Application) moveTo(to Status, now time.Time) StatusChange {
	now = now.UTC()
	change := StatusChange{From: a.Status, To: to, At: now}
	a.Status = to
	a.LastUpdatedAt = now
	if to == StatusApplied && a.AppliedAt == nil {
		a.AppliedAt = &now
	}
	a.History = append(a.History, change)
	return change
}
