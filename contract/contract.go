//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"mix-lab/domain"
	"mix-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// RatingSource resolves player identities against the rating provider.
// Both calls block and honor the context deadline.
type RatingSource interface {
	Rating(ctx context.Context, nickname string) (int, error)
	Profile(ctx context.Context, nickname string) (domain.PlayerProfile, error)
}

// Renderer redraws the surface a session is attached to.
//
// RenderSession must be idempotent : redrawing the same view twice
// leaves the surface unchanged. ResolveLocation verifies the surface
// still exists and returns a refreshed handle for it, or
// errors.ErrStaleLocation when it is gone for good.
type Renderer interface {
	RenderSession(ctx context.Context, location domain.Location, view domain.SessionView) error
	ResolveLocation(ctx context.Context, location domain.Location) (domain.Location, error)
}
