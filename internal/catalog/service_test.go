package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/model"
)

type recordingFinder struct {
	filter catalog.JobFilter
	offset int
	limit  int
	items  []model.ListingView
	err    error
}

func (f *recordingFinder) Find(_ context.Context, filter catalog.JobFilter, offset, limit int) ([]model.ListingView, error) {
	f.filter, f.offset, f.limit = filter, offset, limit
	return f.items, f.err
}

func TestFindJobs_Paging(t *testing.T) {
	cases := []struct {
		page       int
		wantPage   int
		wantOffset int
	}{
		{page: -3, wantPage: 1, wantOffset: 0},
		{page: 0, wantPage: 1, wantOffset: 0},
		{page: 1, wantPage: 1, wantOffset: 0},
		{page: 3, wantPage: 3, wantOffset: 40},
	}
	for _, c := range cases {
		finder := &recordingFinder{}
		svc := catalog.NewService(finder, nil)

		got, err := svc.FindJobs(context.Background(), catalog.JobFilter{}, c.page)
		require.NoError(t, err)
		assert.Equal(t, c.wantPage, got.Page)
		assert.Equal(t, model.PageSize, got.PageSize)
		assert.Equal(t, c.wantOffset, finder.offset, "page %d", c.page)
		assert.Equal(t, 20, finder.limit)
		assert.NotNil(t, got.Items)
	}
}

func TestFindJobs_TrimsFilter(t *testing.T) {
	finder := &recordingFinder{items: []model.ListingView{{SourceName: "Remotive"}}}
	svc := catalog.NewService(finder, nil)

	got, err := svc.FindJobs(context.Background(), catalog.JobFilter{Category: " Engineering ", Location: "berlin "}, 1)
	require.NoError(t, err)
	assert.Equal(t, catalog.JobFilter{Category: "Engineering", Location: "berlin"}, finder.filter)
	assert.Len(t, got.Items, 1)
}

func TestFindJobs_StorageError(t *testing.T) {
	boom := errors.New("db down")
	svc := catalog.NewService(&recordingFinder{err: boom}, nil)

	_, err := svc.FindJobs(context.Background(), catalog.JobFilter{}, 1)
	assert.ErrorIs(t, err, boom)
}
