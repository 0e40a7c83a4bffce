package usecase

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
	hcdomain "github.com/x-xyz/marketplace/domain/healthcheck"
	"github.com/x-xyz/marketplace/service/ledger"
	"github.com/x-xyz/marketplace/stores/healthcheck/repository"
)

type pingerMock struct {
	mock.Mock
	name string
}

func (m *pingerMock) Name() string { return m.name }

func (m *pingerMock) Ping(c ctx.Ctx) error {
	return m.Called(c).Error(0)
}

func TestCheck(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	mgo := &pingerMock{name: "mongo"}
	mgo.On("Ping", mock.Anything).Return(nil).Once()
	mgo.On("Ping", mock.Anything).Return(errors.New("mongo down")).Once()
	rds := &pingerMock{name: "redis"}
	rds.On("Ping", mock.Anything).Return(nil).Twice()

	uc := New(0, mgo, rds)
	req.Equal(hcdomain.Report{
		Healthy:    true,
		Components: map[string]string{"mongo": hcdomain.StatusOK, "redis": hcdomain.StatusOK},
	}, uc.Check(c))
	req.Equal(hcdomain.Report{
		Healthy:    false,
		Components: map[string]string{"mongo": hcdomain.StatusDown, "redis": hcdomain.StatusOK},
	}, uc.Check(c))
	mgo.AssertExpectations(t)
	rds.AssertExpectations(t)
}

func TestPingTimeout(t *testing.T) {
	slow := &pingerMock{name: "chain"}
	slow.On("Ping", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		<-args.Get(0).(ctx.Ctx).Done()
	})
	// the pinger itself decides what a cancelled context means
	rep := New(10*time.Millisecond, slow).Check(ctx.Background())
	require.Equal(t, hcdomain.StatusOK, rep.Components["chain"])
}

func TestMemoryLedgerPinger(t *testing.T) {
	req := require.New(t)
	escrow := domain.Address("0x1000000000000000000000000000000000000001")
	led := ledger.NewMemory()
	req.NoError(led.Deposit(ctx.Background(), escrow, big.NewInt(1)))

	pingers := repository.Pingers(nil, nil, led, escrow)
	req.Len(pingers, 1)
	rep := New(0, pingers...).Check(ctx.Background())
	req.True(rep.Healthy)
	req.Equal(hcdomain.StatusOK, rep.Components["ledger"])
}

func TestNothingConfigured(t *testing.T) {
	rep := New(0, repository.Pingers(nil, nil, nil, "")...).Check(ctx.Background())
	require.True(t, rep.Healthy)
	require.Empty(t, rep.Components)
}
