package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/VictorFortuna/telegram-raffle-game/internal/models"
	"github.com/VictorFortuna/telegram-raffle-game/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// memoryStore is an in-memory stand-in for the MongoDB repositories with the
// same atomicity guarantees: every mutating operation runs under one lock.
type memoryStore struct {
	mu             sync.Mutex
	raffles        map[primitive.ObjectID]*models.Raffle
	participations map[primitive.ObjectID][]*models.Participation
	ledger         []*models.LedgerEntry
	settings       *models.RaffleSettings

	activeReads int
}

func newMemoryStore(settings *models.RaffleSettings) *memoryStore {
	return &memoryStore{
		raffles:        make(map[primitive.ObjectID]*models.Raffle),
		participations: make(map[primitive.ObjectID][]*models.Participation),
		settings:       settings,
	}
}

func (m *memoryStore) GetActiveRaffle(ctx context.Context) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeReads++
	for _, r := range m.raffles {
		if r.Status == models.RaffleStatusActive {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) CreateRaffle(ctx context.Context, settings *models.RaffleSettings) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.raffles {
		if r.Status == models.RaffleStatusActive {
			return nil, models.ErrActiveRaffleExists
		}
	}
	raffle := &models.Raffle{
		ID:                   primitive.NewObjectID(),
		RequiredParticipants: settings.ParticipantsLimit,
		BetAmount:            settings.BetAmount,
		WinnerPercent:        settings.WinnerPercent,
		OrganizerPercent:     settings.OrganizerPercent,
		Status:               models.RaffleStatusActive,
		CreatedAt:            time.Now(),
	}
	m.raffles[raffle.ID] = raffle
	copied := *raffle
	return &copied, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raffles[id]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memoryStore) TryAdmit(ctx context.Context, raffleID primitive.ObjectID, userID int64, amount int64) (*repositories.AdmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raffles[raffleID]
	if !ok || r.Status != models.RaffleStatusActive {
		return nil, models.ErrRaffleNotActive
	}
	for _, p := range m.participations[raffleID] {
		if p.UserID == userID {
			return nil, models.ErrAlreadyParticipated
		}
	}
	if r.CurrentParticipants >= r.RequiredParticipants {
		return nil, models.ErrRaffleFull
	}

	participation := &models.Participation{
		ID:       primitive.NewObjectID(),
		RaffleID: raffleID,
		UserID:   userID,
		Amount:   amount,
		Status:   models.ParticipationStatusConfirmed,
		PlacedAt: time.Now(),
	}
	m.participations[raffleID] = append(m.participations[raffleID], participation)
	r.CurrentParticipants++
	r.TotalPot += amount
	m.ledger = append(m.ledger, &models.LedgerEntry{
		ID:              primitive.NewObjectID(),
		UserID:          &userID,
		Amount:          -amount,
		Type:            models.LedgerEntryBet,
		RaffleID:        &raffleID,
		ParticipationID: &participation.ID,
		CreatedAt:       time.Now(),
	})

	copied := *r
	pCopied := *participation
	return &repositories.AdmitResult{
		Raffle:        &copied,
		Participation: &pCopied,
		NowFull:       r.CurrentParticipants == r.RequiredParticipants,
	}, nil
}

func (m *memoryStore) TryComplete(ctx context.Context, raffleID primitive.ObjectID, winnerID int64, winnerAmount, organizerAmount int64, randomSeed string) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raffles[raffleID]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	if r.Status != models.RaffleStatusActive {
		return nil, models.ErrRaffleTerminal
	}
	r.Status = models.RaffleStatusCompleted
	r.WinnerID = winnerID
	r.WinnerAmount = winnerAmount
	r.OrganizerAmount = organizerAmount
	r.RandomSeed = randomSeed
	r.CompletedAt = time.Now()

	m.ledger = append(m.ledger,
		&models.LedgerEntry{
			ID:        primitive.NewObjectID(),
			UserID:    &winnerID,
			Amount:    winnerAmount,
			Type:      models.LedgerEntryWin,
			RaffleID:  &raffleID,
			CreatedAt: time.Now(),
		},
		&models.LedgerEntry{
			ID:        primitive.NewObjectID(),
			Amount:    organizerAmount,
			Type:      models.LedgerEntryFee,
			RaffleID:  &raffleID,
			CreatedAt: time.Now(),
		})

	copied := *r
	return &copied, nil
}

func (m *memoryStore) Cancel(ctx context.Context, raffleID primitive.ObjectID, reason string) ([]*models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raffles[raffleID]
	if !ok {
		return nil, models.ErrRaffleNotFound
	}
	if r.Status != models.RaffleStatusActive {
		return nil, models.ErrRaffleTerminal
	}
	r.Status = models.RaffleStatusCancelled
	r.CancelReason = reason
	r.CompletedAt = time.Now()

	participants := make([]*models.Participation, 0, len(m.participations[raffleID]))
	for _, p := range m.participations[raffleID] {
		userID := p.UserID
		m.ledger = append(m.ledger, &models.LedgerEntry{
			ID:              primitive.NewObjectID(),
			UserID:          &userID,
			Amount:          p.Amount,
			Type:            models.LedgerEntryRefund,
			RaffleID:        &raffleID,
			ParticipationID: &p.ID,
			CreatedAt:       time.Now(),
		})
		copied := *p
		participants = append(participants, &copied)
	}
	return participants, nil
}

func (m *memoryStore) GetParticipants(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	participants := make([]*models.Participation, 0, len(m.participations[raffleID]))
	for _, p := range m.participations[raffleID] {
		copied := *p
		participants = append(participants, &copied)
	}
	return participants, nil
}

func (m *memoryStore) HasParticipation(ctx context.Context, raffleID primitive.ObjectID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participations[raffleID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) GetHistory(ctx context.Context, limit, offset int) ([]*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Raffle
	for _, r := range m.raffles {
		if r.Status.IsTerminal() {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) GetStats(ctx context.Context) (*models.RaffleStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.RaffleStats{}
	for _, r := range m.raffles {
		stats.TotalRaffles++
		switch r.Status {
		case models.RaffleStatusCompleted:
			stats.CompletedRaffles++
			stats.TotalVolume += r.TotalPot
			stats.TotalFees += r.OrganizerAmount
		case models.RaffleStatusCancelled:
			stats.CancelledRaffles++
		case models.RaffleStatusActive:
			stats.ActiveRaffles++
		}
	}
	return stats, nil
}

// GetActive / Update implement repositories.SettingsRepository.
func (m *memoryStore) GetActive(ctx context.Context) (*models.RaffleSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil, models.ErrNoActiveSettings
	}
	copied := *m.settings
	return &copied, nil
}

func (m *memoryStore) Update(ctx context.Context, settings *models.RaffleSettings) (*models.RaffleSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *settings
	copied.IsActive = true
	m.settings = &copied
	out := copied
	return &out, nil
}

// ledgerSum returns the signed sum of all ledger entries for a raffle.
func (m *memoryStore) ledgerSum(raffleID primitive.ObjectID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.ledger {
		if e.RaffleID != nil && *e.RaffleID == raffleID {
			sum += e.Amount
		}
	}
	return sum
}

func testSettings() *models.RaffleSettings {
	return &models.RaffleSettings{
		ParticipantsLimit: 2,
		BetAmount:         10,
		WinnerPercent:     70,
		OrganizerPercent:  30,
		IsActive:          true,
	}
}

func newTestService(store *memoryStore) RaffleService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRaffleService(store, store, nil, nil, logger)
}

func TestPlaceBetCreatesRaffleLazily(t *testing.T) {
	store := newMemoryStore(testSettings())
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	require.NotNil(t, result.Raffle)

	assert.False(t, result.Completed)
	assert.Equal(t, 1, result.Raffle.CurrentParticipants)
	assert.Equal(t, 2, result.Raffle.RequiredParticipants)
	assert.Equal(t, int64(10), result.Raffle.TotalPot)
	assert.Equal(t, models.RaffleStatusActive, result.Raffle.Status)
	assert.Equal(t, int64(1001), result.Participation.UserID)
	assert.Equal(t, int64(-10), store.ledgerSum(result.Raffle.ID))
}

func TestPlaceBetWithoutSettingsFails(t *testing.T) {
	store := newMemoryStore(nil)
	svc := newTestService(store)

	_, err := svc.PlaceBet(context.Background(), 1001)
	assert.ErrorIs(t, err, models.ErrNoActiveSettings)
}

func TestPlaceBetRejectsDuplicate(t *testing.T) {
	store := newMemoryStore(testSettings())
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)

	_, err = svc.PlaceBet(ctx, 1001)
	assert.ErrorIs(t, err, models.ErrAlreadyParticipated)
}

func TestPlaceBetCompletesWhenFull(t *testing.T) {
	store := newMemoryStore(testSettings())
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	require.False(t, first.Completed)

	second, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)
	require.True(t, second.Completed)

	raffle := second.Raffle
	assert.Equal(t, models.RaffleStatusCompleted, raffle.Status)
	assert.Contains(t, []int64{1001, 1002}, raffle.WinnerID)
	assert.Equal(t, int64(20), raffle.TotalPot)
	assert.Equal(t, int64(14), raffle.WinnerAmount)
	assert.Equal(t, int64(6), raffle.OrganizerAmount)
	assert.NotEmpty(t, raffle.RandomSeed)
	require.NotNil(t, second.Winner)
	assert.Equal(t, raffle.WinnerID, second.Winner.UserID)
	assert.Len(t, second.Participants, 2)

	// Conservation: bets, win and fee for a completed raffle sum to zero.
	assert.Equal(t, int64(0), store.ledgerSum(raffle.ID))
}

func TestTwoParticipantOneStarRaffle(t *testing.T) {
	settings := testSettings()
	settings.BetAmount = 1
	store := newMemoryStore(settings)
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Raffle.CurrentParticipants)
	assert.Equal(t, int64(1), first.Raffle.TotalPot)

	second, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)
	require.True(t, second.Completed)

	// floor(2 * 0.7) = 1, remainder to the organizer.
	raffle := second.Raffle
	assert.Equal(t, int64(2), raffle.TotalPot)
	assert.Equal(t, int64(1), raffle.WinnerAmount)
	assert.Equal(t, int64(1), raffle.OrganizerAmount)

	store.mu.Lock()
	var bets, wins, fees int
	for _, e := range store.ledger {
		if e.RaffleID == nil || *e.RaffleID != raffle.ID {
			continue
		}
		switch e.Type {
		case models.LedgerEntryBet:
			bets++
			assert.Equal(t, int64(-1), e.Amount)
		case models.LedgerEntryWin:
			wins++
			assert.Equal(t, int64(1), e.Amount)
			require.NotNil(t, e.UserID)
			assert.Equal(t, raffle.WinnerID, *e.UserID)
		case models.LedgerEntryFee:
			fees++
			assert.Equal(t, int64(1), e.Amount)
		}
	}
	store.mu.Unlock()

	assert.Equal(t, 2, bets)
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, fees)
	assert.Equal(t, int64(0), store.ledgerSum(raffle.ID))
}

func TestPlaceBetAfterCompletionOpensNewRaffle(t *testing.T) {
	store := newMemoryStore(testSettings())
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	done, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)
	require.True(t, done.Completed)

	// The same users may join again: uniqueness is per raffle.
	next, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, next.Completed)
	assert.NotEqual(t, done.Raffle.ID, next.Raffle.ID)
	assert.Equal(t, 1, next.Raffle.CurrentParticipants)
}

func TestConcurrentBetsFillExactlyOnce(t *testing.T) {
	settings := testSettings()
	settings.ParticipantsLimit = 10
	store := newMemoryStore(settings)
	svc := newTestService(store)
	ctx := context.Background()

	const bettors = 10
	results := make([]*BetResult, bettors)
	errs := make([]error, bettors)

	var wg sync.WaitGroup
	for i := 0; i < bettors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.PlaceBet(ctx, int64(2000+i))
		}(i)
	}
	wg.Wait()

	var admitted, completed int
	var raffleID primitive.ObjectID
	for i := 0; i < bettors; i++ {
		require.NoError(t, errs[i])
		admitted++
		if results[i].Completed {
			completed++
			raffleID = results[i].Raffle.ID
		}
	}

	// Every bettor got a slot and exactly one call observed the completion.
	assert.Equal(t, bettors, admitted)
	assert.Equal(t, 1, completed)

	raffle, err := svc.GetRaffle(ctx, raffleID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusCompleted, raffle.Status)
	assert.Equal(t, 10, raffle.CurrentParticipants)
	assert.Equal(t, int64(100), raffle.TotalPot)
	assert.Equal(t, raffle.TotalPot, raffle.WinnerAmount+raffle.OrganizerAmount)
	assert.Equal(t, int64(0), store.ledgerSum(raffleID))

	participants, err := svc.GetParticipants(ctx, raffleID)
	require.NoError(t, err)
	assert.Len(t, participants, 10)

	winnerFound := false
	for _, p := range participants {
		if p.UserID == raffle.WinnerID {
			winnerFound = true
		}
	}
	assert.True(t, winnerFound, "winner must be one of the participants")
}

// cancelRacingStore simulates an admin cancellation committing between the
// filling admission and its completion attempt.
type cancelRacingStore struct {
	*memoryStore
}

func (s *cancelRacingStore) TryComplete(ctx context.Context, raffleID primitive.ObjectID, winnerID int64, winnerAmount, organizerAmount int64, randomSeed string) (*models.Raffle, error) {
	if _, err := s.memoryStore.Cancel(ctx, raffleID, "operator cancel"); err != nil {
		return nil, err
	}
	return s.memoryStore.TryComplete(ctx, raffleID, winnerID, winnerAmount, organizerAmount, randomSeed)
}

func TestPlaceBetLosesCompletionRaceToCancel(t *testing.T) {
	store := &cancelRacingStore{memoryStore: newMemoryStore(testSettings())}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewRaffleService(store, store.memoryStore, nil, nil, logger)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)

	// The filling bet is admitted, but cancellation wins the terminal
	// transition. The bet itself stays valid and the committed outcome is
	// surfaced instead of an error or a second draw.
	result, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)
	require.NotNil(t, result.Participation)
	assert.Equal(t, int64(1002), result.Participation.UserID)

	assert.False(t, result.Completed)
	assert.Equal(t, models.RaffleStatusCancelled, result.Raffle.Status)
	assert.Nil(t, result.Winner)
	assert.Equal(t, int64(0), result.Raffle.WinnerID)

	// Bets plus refunds cancel out; no win or fee entries were written.
	assert.Equal(t, int64(0), store.ledgerSum(result.Raffle.ID))
}

// completionRacingStore simulates a concurrent execution path completing the
// raffle first, so this caller's completion attempt finds a terminal row.
type completionRacingStore struct {
	*memoryStore
}

func (s *completionRacingStore) TryComplete(ctx context.Context, raffleID primitive.ObjectID, winnerID int64, winnerAmount, organizerAmount int64, randomSeed string) (*models.Raffle, error) {
	participants, err := s.memoryStore.GetParticipants(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	rival := participants[0].UserID
	if _, err := s.memoryStore.TryComplete(ctx, raffleID, rival, winnerAmount, organizerAmount, "rival-seed"); err != nil {
		return nil, err
	}
	return s.memoryStore.TryComplete(ctx, raffleID, winnerID, winnerAmount, organizerAmount, randomSeed)
}

func TestPlaceBetLosesCompletionRaceToRivalDraw(t *testing.T) {
	store := &completionRacingStore{memoryStore: newMemoryStore(testSettings())}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewRaffleService(store, store.memoryStore, nil, nil, logger)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)

	result, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)

	// The rival draw's outcome is returned as-is: exactly one winner exists.
	assert.True(t, result.Completed)
	assert.Equal(t, models.RaffleStatusCompleted, result.Raffle.Status)
	assert.Equal(t, int64(1001), result.Raffle.WinnerID)
	assert.Equal(t, "rival-seed", result.Raffle.RandomSeed)
	require.NotNil(t, result.Winner)
	assert.Equal(t, int64(1001), result.Winner.UserID)
	assert.Equal(t, int64(0), store.ledgerSum(result.Raffle.ID))
}

// staleAdmitStore fails admissions with a fixed error, standing in for a
// raffle that went full or terminal between the read and the write.
type staleAdmitStore struct {
	*memoryStore
	admitErr error
}

func (s *staleAdmitStore) TryAdmit(ctx context.Context, raffleID primitive.ObjectID, userID int64, amount int64) (*repositories.AdmitResult, error) {
	if s.admitErr != nil {
		return nil, s.admitErr
	}
	return s.memoryStore.TryAdmit(ctx, raffleID, userID, amount)
}

func TestPlaceBetStaleRaffleInvalidatesCache(t *testing.T) {
	tests := []struct {
		name       string
		admitErr   error
		wantDelete bool
	}{
		{"raffle went full", models.ErrRaffleFull, true},
		{"raffle went terminal", models.ErrRaffleNotActive, true},
		{"duplicate bet", models.ErrAlreadyParticipated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &staleAdmitStore{memoryStore: newMemoryStore(testSettings()), admitErr: tt.admitErr}
			_, err := store.memoryStore.CreateRaffle(context.Background(), testSettings())
			require.NoError(t, err)

			cc := &countingCache{}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			svc := NewRaffleService(store, store.memoryStore, cc, nil, logger)

			_, err = svc.PlaceBet(context.Background(), 1001)
			assert.ErrorIs(t, err, tt.admitErr)

			if tt.wantDelete {
				assert.Equal(t, 1, cc.deletes, "stale admission must drop the cached raffle")
			} else {
				assert.Equal(t, 0, cc.deletes)
			}
		})
	}
}

func TestStatisticsCountCompletedVolumeOnly(t *testing.T) {
	settings := testSettings()
	settings.ParticipantsLimit = 2
	store := newMemoryStore(settings)
	svc := newTestService(store)
	ctx := context.Background()

	// One completed raffle, pot 20.
	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	done, err := svc.PlaceBet(ctx, 1002)
	require.NoError(t, err)
	require.True(t, done.Completed)

	// One cancelled raffle with a refunded stake: not volume.
	next, err := svc.PlaceBet(ctx, 1003)
	require.NoError(t, err)
	_, err = svc.CancelRaffle(ctx, next.Raffle.ID, "maintenance")
	require.NoError(t, err)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.TotalVolume)
	assert.Equal(t, int64(6), stats.TotalFees)
	assert.Equal(t, int64(1), stats.CompletedRaffles)
	assert.Equal(t, int64(1), stats.CancelledRaffles)
}

func TestCancelRefundsParticipants(t *testing.T) {
	settings := testSettings()
	settings.ParticipantsLimit = 5
	store := newMemoryStore(settings)
	svc := newTestService(store)
	ctx := context.Background()

	var raffleID primitive.ObjectID
	for i := 0; i < 3; i++ {
		result, err := svc.PlaceBet(ctx, int64(3000+i))
		require.NoError(t, err)
		raffleID = result.Raffle.ID
	}

	cancelled, err := svc.CancelRaffle(ctx, raffleID, "maintenance")
	require.NoError(t, err)

	assert.Equal(t, models.RaffleStatusCancelled, cancelled.Raffle.Status)
	assert.Equal(t, "maintenance", cancelled.Raffle.CancelReason)
	assert.Equal(t, 3, cancelled.Refunded)
	assert.Len(t, cancelled.Participants, 3)

	// Refunds cancel the stakes exactly.
	assert.Equal(t, int64(0), store.ledgerSum(raffleID))

	_, err = svc.CancelRaffle(ctx, raffleID, "again")
	assert.ErrorIs(t, err, models.ErrRaffleTerminal)
}

func TestCanParticipate(t *testing.T) {
	store := newMemoryStore(testSettings())
	svc := newTestService(store)
	ctx := context.Background()

	// No raffle open yet: the next bet opens one.
	check, err := svc.CanParticipate(ctx, 1001)
	require.NoError(t, err)
	assert.True(t, check.CanParticipate)

	_, err = svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)

	check, err = svc.CanParticipate(ctx, 1001)
	require.NoError(t, err)
	assert.False(t, check.CanParticipate)

	check, err = svc.CanParticipate(ctx, 1002)
	require.NoError(t, err)
	assert.True(t, check.CanParticipate)
}

// countingCache records cache traffic for the read-through test.
type countingCache struct {
	mu      sync.Mutex
	raffle  *models.Raffle
	hits    int
	sets    int
	deletes int
}

func (c *countingCache) Get(ctx context.Context) (*models.Raffle, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raffle == nil {
		return nil, false, nil
	}
	c.hits++
	copied := *c.raffle
	return &copied, true, nil
}

func (c *countingCache) Set(ctx context.Context, raffle *models.Raffle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *raffle
	c.raffle = &copied
	c.sets++
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raffle = nil
	c.deletes++
	return nil
}

func TestGetCurrentRaffleReadsThroughCache(t *testing.T) {
	store := newMemoryStore(testSettings())
	cc := &countingCache{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewRaffleService(store, store, cc, nil, logger)
	ctx := context.Background()

	_, err := svc.PlaceBet(ctx, 1001)
	require.NoError(t, err)
	// PlaceBet invalidates; the write path never populates the cache.
	assert.Equal(t, 0, cc.sets)

	first, err := svc.GetCurrentRaffle(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, cc.sets)

	readsBefore := store.activeReads
	second, err := svc.GetCurrentRaffle(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, readsBefore, store.activeReads, "cache hit must not touch the repository")
}
