package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"mix-lab/contract"
	"mix-lab/domain/event"
	"mix-lab/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_EverySinkConsumesTheEvent(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)

	evt := event.New(event.SessionOpenedType, "session-1", nil)
	first.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	second.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, nil).Add([]contract.EventSink{first, second})
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkFailureDoesNotStopTheOthers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	evt := event.New(event.ParticipantJoinedType, "session-1", nil)
	failing.EXPECT().Consume(gomock.Any(), evt).Return(fmt.Errorf("disk on fire")).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, nil).Add([]contract.EventSink{failing, healthy})
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_ForwardsDomainEventsToTelemetry(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	domainEvent := make(chan event.Event, 1)
	telemetryEvent := make(chan event.Event, 1)
	fanout := NewEventFanout(log, domainEvent, telemetryEvent).Add([]contract.EventSink{sink})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fanout.Run(ctx)
	}()

	evt := event.New(event.TeamsFormedType, "session-1", event.TeamsFormed{TotalA: 100, TotalB: 100})
	domainEvent <- evt

	select {
	case forwarded := <-telemetryEvent:
		req.Equal(evt.ID, forwarded.ID)
		req.Equal(event.TeamsFormedType, forwarded.Type)
	case <-time.After(1 * time.Second):
		req.Fail("Event was not forwarded to the telemetry channel")
	}

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(1 * time.Second):
		req.Fail("Fanout did not stop on context cancellation")
	}
}
