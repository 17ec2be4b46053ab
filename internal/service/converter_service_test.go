package service

import (
	"context"
	"testing"

	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type converterTestDeps struct {
	svc       *ConverterService
	rateCache *mocks.MockRateCache
	ctrl      *gomock.Controller
}

func setupConverter(t *testing.T) *converterTestDeps {
	ctrl := gomock.NewController(t)
	d := &converterTestDeps{
		rateCache: mocks.NewMockRateCache(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewConverter(d.rateCache)
	return d
}

func TestConverterService_Convert_SameCurrency(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(decimal.NewFromFloat(0.92), nil).Times(2)

	got, err := d.svc.Convert(ctx, decimal.NewFromFloat(123.45), "USD", "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(123.45)), "got %s", got)
}

func TestConverterService_Convert_CrossCurrency(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(decimal.NewFromInt(1), nil)
	d.rateCache.EXPECT().GetRate(ctx, "EUR").Return(decimal.NewFromFloat(0.92), nil)

	// rate(USD->EUR) = round(0.92 / 1, 2) = 0.92
	got, err := d.svc.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(92)), "got %s", got)
}

func TestConverterService_Convert_PairRateMemoized(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	// Exactly one derivation regardless of how many conversions follow.
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(decimal.NewFromInt(1), nil)
	d.rateCache.EXPECT().GetRate(ctx, "EUR").Return(decimal.NewFromFloat(0.92), nil)

	for range 5 {
		got, err := d.svc.Convert(ctx, decimal.NewFromInt(50), "USD", "EUR")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromFloat(46)), "got %s", got)
	}
}

func TestConverterService_Convert_OrderedPairsAreIndependent(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	usd := decimal.NewFromInt(1)
	eur := decimal.NewFromFloat(0.92)

	// USD->EUR and EUR->USD each derive their own rate; the reverse pair
	// is round(1 / 0.92, 2) = 1.09, not the reciprocal of 0.92.
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(usd, nil).Times(2)
	d.rateCache.EXPECT().GetRate(ctx, "EUR").Return(eur, nil).Times(2)

	there, err := d.svc.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)
	back, err := d.svc.Convert(ctx, there, "EUR", "USD")
	require.NoError(t, err)

	assert.True(t, there.Equal(decimal.NewFromFloat(92)), "there %s", there)
	// 92 * 1.09: the round trip does not return to the original amount.
	assert.True(t, back.Equal(decimal.NewFromFloat(100.28)), "back %s", back)
}

func TestConverterService_Convert_BankersRounding(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "AAA").Return(decimal.NewFromInt(1), nil)
	d.rateCache.EXPECT().GetRate(ctx, "BBB").Return(decimal.NewFromFloat(0.5), nil)

	// 0.25 * 0.5 = 0.125, which rounds half to even: 0.12, not 0.13.
	got, err := d.svc.Convert(ctx, decimal.NewFromFloat(0.25), "AAA", "BBB")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromFloat(0.12)), "got %s", got)
}

func TestConverterService_Convert_ZeroSourceRateFailsClosed(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	// A zero rate would divide by zero during pair derivation. It must
	// surface as a typed provider error, never a panic.
	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "XAU").Return(decimal.Zero, nil)
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(decimal.NewFromInt(1), nil)

	_, err := d.svc.Convert(ctx, decimal.NewFromInt(10), "XAU", "USD")
	assertAppError(t, err, "RATE_002")
}

func TestConverterService_Convert_ZeroTargetRateFailsClosed(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	// A zero target rate would silently convert every amount to zero.
	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "USD").Return(decimal.NewFromInt(1), nil)
	d.rateCache.EXPECT().GetRate(ctx, "XAU").Return(decimal.Zero, nil)

	_, err := d.svc.Convert(ctx, decimal.NewFromInt(10), "USD", "XAU")
	assertAppError(t, err, "RATE_002")
}

func TestConverterService_Convert_UnknownCurrency(t *testing.T) {
	d := setupConverter(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.rateCache.EXPECT().GetRate(ctx, "XXX").
		Return(decimal.Decimal{}, apperror.ErrUnknownCurrency("XXX"))

	_, err := d.svc.Convert(ctx, decimal.NewFromInt(10), "XXX", "USD")
	assertAppError(t, err, "RATE_001")
}
