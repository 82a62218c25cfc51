package model_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/jobboard-service/internal/model"
)

func TestEmptyProfile(t *testing.T) {
	p := model.EmptyProfile("u1")

	assert.Equal(t, "u1", p.UserID)
	assert.NotNil(t, p.Categories)
	assert.NotNil(t, p.Locations)
	assert.False(t, p.HasCriteria())
	assert.NoError(t, p.Validate())
}

func TestSearchProfile_Validate(t *testing.T) {
	tooMany := make([]string, model.MaxProfileCategories+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("cat-%d", i)
	}
	atLimit := tooMany[:model.MaxProfileCategories]

	tests := []struct {
		name    string
		profile model.SearchProfile
		wantErr bool
	}{
		{"categories only", model.SearchProfile{UserID: "u1", Categories: []string{"Go"}}, false},
		{"alerts with a location", model.SearchProfile{UserID: "u1", Locations: []string{"Berlin"}, AlertsEnabled: true}, false},
		{"categories at limit", model.SearchProfile{UserID: "u1", Categories: atLimit}, false},
		{"missing user", model.SearchProfile{Categories: []string{"Go"}}, true},
		{"blank user", model.SearchProfile{UserID: "  "}, true},
		{"too many categories", model.SearchProfile{UserID: "u1", Categories: tooMany}, true},
		{"negative salary", model.SearchProfile{UserID: "u1", MinimumSalary: -1}, true},
		{"alerts without criteria", model.SearchProfile{UserID: "u1", AlertsEnabled: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestSearchProfile_Normalize(t *testing.T) {
	p := model.SearchProfile{
		UserID:     "u1",
		Categories: []string{" Go ", "", "Rust", "Go", "  "},
		Locations:  []string{"Berlin", "Berlin ", "Remote"},
	}

	p.Normalize()

	assert.Equal(t, []string{"Go", "Rust"}, p.Categories)
	assert.Equal(t, []string{"Berlin", "Remote"}, p.Locations)
}

func TestSearchProfile_NormalizeBlankOnlyClearsCriteria(t *testing.T) {
	p := model.SearchProfile{UserID: "u1", Categories: []string{" "}, AlertsEnabled: true}

	p.Normalize()

	assert.Empty(t, p.Categories)
	assert.NotNil(t, p.Locations)
	assert.False(t, p.HasCriteria())
	assert.ErrorIs(t, p.Validate(), model.ErrInvalidInput)
}
