package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) ListItems(ctx context.Context) ([]market.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]market.Snapshot), args.Error(1)
}

func (m *MockItemService) FetchSnapshot(ctx context.Context, marketHashName string) (market.Snapshot, error) {
	args := m.Called(ctx, marketHashName)
	return args.Get(0).(market.Snapshot), args.Error(1)
}

type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Scan(ctx context.Context, items []market.Snapshot) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func listed(name string, price float64, quantity int) market.Snapshot {
	return market.Snapshot{
		MarketHashName: name,
		Price:          decimal.NewFromFloat(price),
		Quantity:       quantity,
		Time:           time.Now(),
	}
}

func TestScanTask_WorkingSetSelection(t *testing.T) {
	itemSvc := new(MockItemService)
	scanSvc := new(MockScanService)
	ctx := context.Background()

	itemSvc.On("ListItems", ctx).Return([]market.Snapshot{
		listed("cheap-liquid", 10, 8),
		listed("zero-price", 0, 8),      // no price, out
		listed("too-expensive", 500, 8), // above max price, out
		listed("illiquid", 10, 1),       // below min quantity, out
		listed("also-good", 20, 5),
	}, nil)

	var got []market.Snapshot
	scanSvc.On("Scan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([]market.Snapshot)
	}).Return(nil)

	task := NewScanTask(scanSvc, itemSvc, WorkingSetConfig{
		MaxItems:    50,
		MinQuantity: 3,
		MaxPrice:    decimal.NewFromInt(100),
	})
	require.NoError(t, task.Run(ctx))

	require.Len(t, got, 2)
	assert.Equal(t, "cheap-liquid", got[0].MarketHashName)
	assert.Equal(t, "also-good", got[1].MarketHashName)
}

func TestScanTask_TruncatesPreservingOrder(t *testing.T) {
	itemSvc := new(MockItemService)
	scanSvc := new(MockScanService)
	ctx := context.Background()

	itemSvc.On("ListItems", ctx).Return([]market.Snapshot{
		listed("a", 10, 5), listed("b", 10, 5), listed("c", 10, 5), listed("d", 10, 5),
	}, nil)

	var got []market.Snapshot
	scanSvc.On("Scan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([]market.Snapshot)
	}).Return(nil)

	task := NewScanTask(scanSvc, itemSvc, WorkingSetConfig{MaxItems: 2})
	require.NoError(t, task.Run(ctx))

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].MarketHashName)
	assert.Equal(t, "b", got[1].MarketHashName)
}

func TestScanTask_RejectFuncFilters(t *testing.T) {
	itemSvc := new(MockItemService)
	scanSvc := new(MockScanService)
	ctx := context.Background()

	itemSvc.On("ListItems", ctx).Return([]market.Snapshot{
		listed("keep", 10, 5), listed("drop", 10, 5),
	}, nil)

	var got []market.Snapshot
	scanSvc.On("Scan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([]market.Snapshot)
	}).Return(nil)

	task := NewScanTask(scanSvc, itemSvc, WorkingSetConfig{},
		func(ctx context.Context, snap market.Snapshot) bool {
			return snap.MarketHashName == "drop"
		})
	require.NoError(t, task.Run(ctx))

	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].MarketHashName)
}

func TestScanTask_ThrottledListingSkipsCycle(t *testing.T) {
	itemSvc := new(MockItemService)
	scanSvc := new(MockScanService)
	ctx := context.Background()

	itemSvc.On("ListItems", ctx).
		Return([]market.Snapshot(nil), &market.ThrottledError{RetryAfter: time.Minute})

	task := NewScanTask(scanSvc, itemSvc, WorkingSetConfig{})
	require.NoError(t, task.Run(ctx))
	scanSvc.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything)
}

func TestTrackerTask_SkipsMissingItems(t *testing.T) {
	itemSvc := new(MockItemService)
	scanSvc := new(MockScanService)
	ctx := context.Background()

	itemSvc.On("FetchSnapshot", ctx, "present").Return(listed("present", 15, 3), nil)
	itemSvc.On("FetchSnapshot", ctx, "delisted").Return(market.Snapshot{}, market.ErrItemNotFound)

	var got []market.Snapshot
	scanSvc.On("Scan", ctx, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).([]market.Snapshot)
	}).Return(nil)

	task := NewTrackerTask(scanSvc, itemSvc, []string{"present", "delisted"})
	require.NoError(t, task.Run(ctx))

	require.Len(t, got, 1)
	assert.Equal(t, "present", got[0].MarketHashName)
}

func TestSummaryTask_PostsAndResets(t *testing.T) {
	notifier := new(MockNotifier)
	signalRepo := new(MockSignalRepo)
	scanner := NewScanner(new(MockAnalyzer), new(MockHistoryService), nil,
		new(MockItemRepo), new(MockTickRepo), signalRepo)

	signalRepo.On("FindUnalerted", mock.Anything, mock.Anything).
		Return([]entity.Signal{{Id: 1, SignalType: "UNDERPRICED"}}, nil)

	var posted string
	notifier.On("NotifyText", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		posted = args.Get(1).(string)
	}).Return(nil)

	task := NewSummaryTask(scanner, signalRepo, notifier)
	require.NoError(t, task.Run(context.Background()))
	assert.Contains(t, posted, "items scanned: 0")
	assert.Contains(t, posted, "alerts sent: 0")
	assert.Contains(t, posted, "unalerted backlog: 1")
}
