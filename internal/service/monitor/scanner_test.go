package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/Hitojaa/skinport-trader/internal/service/notification"
	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============ Mock 定义 ============

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) FetchHistory(ctx context.Context, marketHashName string) (market.SalesHistory, error) {
	args := m.Called(ctx, marketHashName)
	return args.Get(0).(market.SalesHistory), args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, snapshot market.Snapshot, history market.SalesHistory) (strategy.Signal, error) {
	args := m.Called(ctx, snapshot, history)
	return args.Get(0).(strategy.Signal), args.Error(1)
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) GetOrCreate(ctx context.Context, item entity.Item) (entity.Item, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(entity.Item), args.Error(1)
}

func (m *MockItemRepo) FindByName(ctx context.Context, marketHashName string) (entity.Item, error) {
	args := m.Called(ctx, marketHashName)
	return args.Get(0).(entity.Item), args.Error(1)
}

type MockTickRepo struct {
	mock.Mock
}

func (m *MockTickRepo) Create(ctx context.Context, tick entity.PriceTick) (int64, error) {
	args := m.Called(ctx, tick)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTickRepo) FindSince(ctx context.Context, itemId int64, since time.Time) ([]entity.PriceTick, error) {
	args := m.Called(ctx, itemId, since)
	return args.Get(0).([]entity.PriceTick), args.Error(1)
}

type MockSignalRepo struct {
	mock.Mock
}

func (m *MockSignalRepo) Create(ctx context.Context, signal entity.Signal) (int64, error) {
	args := m.Called(ctx, signal)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSignalRepo) MarkAlerted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSignalRepo) FindUnalerted(ctx context.Context, limit int) ([]entity.Signal, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.Signal), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, signal strategy.Signal) error {
	args := m.Called(ctx, signal)
	return args.Error(0)
}

func (m *MockNotifier) NotifyText(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

// ============ 测试工具 ============

func snapOf(name string, price float64) market.Snapshot {
	return market.Snapshot{
		MarketHashName: name,
		Currency:       "EUR",
		Price:          decimal.NewFromFloat(price),
		Quantity:       10,
		Time:           time.Now(),
	}
}

func historyOf(median7 float64, vol24 int) market.SalesHistory {
	return market.SalesHistory{
		Last24Hours: market.WindowStats{Volume: vol24, Avg: decimal.NewFromFloat(median7), Median: decimal.NewFromFloat(median7)},
		Last7Days:   market.WindowStats{Volume: vol24 * 7, Avg: decimal.NewFromFloat(median7), Median: decimal.NewFromFloat(median7)},
	}
}

func underpricedSignal(name string) strategy.Signal {
	return strategy.Signal{
		MarketHashName: name,
		Type:           strategy.Underpriced,
		CurrentPrice:   decimal.NewFromFloat(26.50),
		Median7d:       decimal.NewFromFloat(32.00),
		DeviationPct:   decimal.NewFromFloat(17.19),
		NetEdgePct:     decimal.NewFromFloat(5.06),
		Volume24h:      15,
		Confidence:     17.19,
		Reason:         "price 17.2% below 7d median, net edge 5.1%",
		Timestamp:      time.Now(),
	}
}

type scannerFixture struct {
	historySvc *MockHistoryService
	analyzer   *MockAnalyzer
	itemRepo   *MockItemRepo
	tickRepo   *MockTickRepo
	signalRepo *MockSignalRepo
	notifier   *MockNotifier
	scanner    *Scanner
}

func newScannerFixture(t *testing.T, gateInterval time.Duration) *scannerFixture {
	t.Helper()
	f := &scannerFixture{
		historySvc: new(MockHistoryService),
		analyzer:   new(MockAnalyzer),
		itemRepo:   new(MockItemRepo),
		tickRepo:   new(MockTickRepo),
		signalRepo: new(MockSignalRepo),
		notifier:   new(MockNotifier),
	}
	f.scanner = NewScanner(f.analyzer, f.historySvc, notification.NewGate(gateInterval),
		f.itemRepo, f.tickRepo, f.signalRepo, WithNotifier(f.notifier))
	return f
}

// ============ Scan ============

func TestScanner_ContinuesPastFailingItem(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	items := []market.Snapshot{snapOf("A", 10), snapOf("B", 10), snapOf("C", 10)}
	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 1}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)

	// B fails on history, A and C evaluate clean
	f.historySvc.On("FetchHistory", ctx, "A").Return(historyOf(10, 20), nil)
	f.historySvc.On("FetchHistory", ctx, "B").Return(market.SalesHistory{}, &market.TransientError{Err: errors.New("boom")})
	f.historySvc.On("FetchHistory", ctx, "C").Return(historyOf(10, 20), nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).Return(strategy.Signal{Type: strategy.NoSignal}, nil)

	err := f.scanner.Scan(ctx, items)
	require.NoError(t, err)

	f.historySvc.AssertNumberOfCalls(t, "FetchHistory", 3)
	// B never reached the analyzer
	f.analyzer.AssertNumberOfCalls(t, "Analyze", 2)
	stats := f.scanner.SnapshotAndReset()
	assert.Equal(t, 3, stats.ItemsScanned)
	assert.Equal(t, 0, stats.SignalsDetected)
}

func TestScanner_ThrottledHistoryDefersItem(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 1}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, "A").
		Return(market.SalesHistory{}, &market.ThrottledError{RetryAfter: 2 * time.Minute})

	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 10)})
	require.NoError(t, err)
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestScanner_CancellationStopsScan(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 10), snapOf("B", 10)})
	assert.ErrorIs(t, err, context.Canceled)
	f.itemRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}

func TestScanner_AlertDeliveredAndMarked(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 7}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, "A").Return(historyOf(32, 15), nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).Return(underpricedSignal("A"), nil)
	f.signalRepo.On("Create", ctx, mock.Anything).Return(int64(42), nil)
	f.notifier.On("Notify", ctx, mock.Anything).Return(nil)
	f.signalRepo.On("MarkAlerted", ctx, int64(42)).Return(nil)

	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 26.50)})
	require.NoError(t, err)

	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	f.signalRepo.AssertCalled(t, "MarkAlerted", ctx, int64(42))
	stats := f.scanner.SnapshotAndReset()
	assert.Equal(t, 1, stats.SignalsDetected)
	assert.Equal(t, 1, stats.AlertsSent)
}

func TestScanner_FailedDeliveryConsumesWindow(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 7}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, "A").Return(historyOf(32, 15), nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).Return(underpricedSignal("A"), nil)
	f.signalRepo.On("Create", ctx, mock.Anything).Return(int64(42), nil)
	f.notifier.On("Notify", ctx, mock.Anything).Return(errors.New("webhook down"))

	// first pass: delivery fails, scan continues
	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 26.50)})
	require.NoError(t, err)
	f.signalRepo.AssertNotCalled(t, "MarkAlerted", mock.Anything, mock.Anything)

	// second pass inside the window: gate suppresses, no second attempt
	err = f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 26.50)})
	require.NoError(t, err)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)

	stats := f.scanner.SnapshotAndReset()
	assert.Equal(t, 2, stats.SignalsDetected)
	assert.Equal(t, 0, stats.AlertsSent)
}

func TestScanner_InsufficientVolumePersistedNotAlerted(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 7}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, "A").Return(historyOf(32, 1), nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).Return(strategy.Signal{
		MarketHashName: "A",
		Type:           strategy.InsufficientVolume,
		CurrentPrice:   decimal.NewFromFloat(26.50),
		Volume24h:      1,
		Reason:         "24h volume 1 below minimum 5",
	}, nil)
	f.signalRepo.On("Create", ctx, mock.MatchedBy(func(s entity.Signal) bool {
		return s.SignalType == "INSUFFICIENT_VOLUME"
	})).Return(int64(9), nil)

	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 26.50)})
	require.NoError(t, err)

	f.signalRepo.AssertNumberOfCalls(t, "Create", 1)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	stats := f.scanner.SnapshotAndReset()
	assert.Equal(t, 0, stats.SignalsDetected)
}

func TestScanner_NotEvaluableSkipped(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 7}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, "A").Return(market.SalesHistory{}, nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).
		Return(strategy.Signal{}, strategy.ErrInsufficientHistory)

	err := f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 26.50)})
	require.NoError(t, err)
	f.signalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============ SnapshotAndReset ============

func TestScanner_SnapshotAndResetClearsCounters(t *testing.T) {
	f := newScannerFixture(t, time.Hour)
	ctx := context.Background()

	f.itemRepo.On("GetOrCreate", ctx, mock.Anything).Return(entity.Item{Id: 1}, nil)
	f.tickRepo.On("Create", ctx, mock.Anything).Return(int64(1), nil)
	f.historySvc.On("FetchHistory", ctx, mock.Anything).Return(historyOf(10, 20), nil)
	f.analyzer.On("Analyze", ctx, mock.Anything, mock.Anything).Return(strategy.Signal{Type: strategy.NoSignal}, nil)

	require.NoError(t, f.scanner.Scan(ctx, []market.Snapshot{snapOf("A", 10)}))

	first := f.scanner.SnapshotAndReset()
	assert.Equal(t, 1, first.ItemsScanned)

	second := f.scanner.SnapshotAndReset()
	assert.Equal(t, 0, second.ItemsScanned)
	assert.False(t, second.Since.Before(first.Since))
}
