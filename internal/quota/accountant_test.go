package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/models"
)

type fakeCountStore struct {
	counts map[uuid.UUID]int
	err    error
}

func newFakeCountStore() *fakeCountStore {
	return &fakeCountStore{counts: make(map[uuid.UUID]int)}
}

func (f *fakeCountStore) TodayCount(_ context.Context, userID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[userID], nil
}

func (f *fakeCountStore) IncrementToday(_ context.Context, userID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[userID]++
	return f.counts[userID], nil
}

type fakeProfileStore struct {
	profiles  map[uuid.UUID]*models.Profile
	setErr    error
	remaining map[uuid.UUID]int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles:  make(map[uuid.UUID]*models.Profile),
		remaining: make(map[uuid.UUID]int),
	}
}

func (f *fakeProfileStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

func (f *fakeProfileStore) SetRemainingGenerations(_ context.Context, userID uuid.UUID, remaining int) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.remaining[userID] = remaining
	return nil
}

func TestRemaining_Basic(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	counts.counts[userID] = 2
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, DailyLimit: 5}

	a := NewAccountant(counts, profiles)

	got, err := a.Remaining(context.Background(), userID, models.AppSettings{})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestRemaining_ClampsAtZero(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	counts.counts[userID] = 9
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, DailyLimit: 3}

	a := NewAccountant(counts, profiles)

	got, err := a.Remaining(context.Background(), userID, models.AppSettings{})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestRemaining_UnlimitedFlagIgnoresCounts(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	counts.err = errors.New("count store down")

	a := NewAccountant(counts, newFakeProfileStore())

	// the flag decides before any storage read happens
	got, err := a.Remaining(context.Background(), userID, models.AppSettings{UnlimitedGenerationsForAll: true})
	require.NoError(t, err)
	assert.Equal(t, Unlimited, got)
}

func TestRecordGeneration_RefreshesDisplayCache(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, DailyLimit: 3}

	a := NewAccountant(counts, profiles)

	require.NoError(t, a.RecordGeneration(context.Background(), userID))
	assert.Equal(t, 1, counts.counts[userID])
	assert.Equal(t, 2, profiles.remaining[userID])
}

func TestRecordGeneration_CacheFailureIsNotAnError(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, DailyLimit: 3}
	profiles.setErr = errors.New("write refused")

	a := NewAccountant(counts, profiles)

	require.NoError(t, a.RecordGeneration(context.Background(), userID))
	assert.Equal(t, 1, counts.counts[userID])
}

func TestRecordGeneration_CounterFailureSurfaces(t *testing.T) {
	counts := newFakeCountStore()
	counts.err = errors.New("insert refused")

	a := NewAccountant(counts, newFakeProfileStore())

	err := a.RecordGeneration(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestRecordGeneration_ConcurrentCallsBothLand(t *testing.T) {
	userID := uuid.New()
	counts := newFakeCountStore()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, DailyLimit: 1}

	a := NewAccountant(counts, profiles)

	// two generations that both passed a Remaining check of 1 are both
	// recorded; the counter ends above the limit and Remaining clamps
	require.NoError(t, a.RecordGeneration(context.Background(), userID))
	require.NoError(t, a.RecordGeneration(context.Background(), userID))

	assert.Equal(t, 2, counts.counts[userID])

	got, err := a.Remaining(context.Background(), userID, models.AppSettings{})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}
