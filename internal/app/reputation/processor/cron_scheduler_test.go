package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewCronScheduler(t *testing.T) {
	trustSvc := new(MockTrustService)

	scheduler := NewCronScheduler(trustSvc)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, trustSvc, scheduler.trustSvc)
}

func TestCronScheduler_Start_Success(t *testing.T) {
	trustSvc := new(MockTrustService)
	scheduler := NewCronScheduler(trustSvc)

	err := scheduler.Start(context.Background(), "*/10 * * * *")

	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	trustSvc := new(MockTrustService)
	scheduler := NewCronScheduler(trustSvc)

	err := scheduler.Start(context.Background(), "invalid cron expression")

	assert.Error(t, err)
}

func TestCronScheduler_JobExecution(t *testing.T) {
	trustSvc := new(MockTrustService)
	scheduler := NewCronScheduler(trustSvc)

	trustSvc.On("RefreshRecentScores", mock.Anything).Return(nil)

	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	assert.GreaterOrEqual(t, len(trustSvc.Calls), 2)
}

func TestCronScheduler_JobExecution_ErrorDoesNotStopSchedule(t *testing.T) {
	trustSvc := new(MockTrustService)
	scheduler := NewCronScheduler(trustSvc)

	trustSvc.On("RefreshRecentScores", mock.Anything).Return(errors.New("db error"))

	err := scheduler.Start(context.Background(), "@every 100ms")
	assert.NoError(t, err)

	time.Sleep(350 * time.Millisecond)

	scheduler.Stop()

	assert.GreaterOrEqual(t, len(trustSvc.Calls), 2)
}

func TestCronScheduler_GetEntries_Empty(t *testing.T) {
	scheduler := NewCronScheduler(new(MockTrustService))

	assert.Empty(t, scheduler.GetEntries())
}
