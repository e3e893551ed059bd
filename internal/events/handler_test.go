package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/internal/events"
)

type fakeScorer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeScorer) Recompute(_ context.Context, employeeID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, employeeID)
	return f.err
}

type fakeChain struct {
	mu    sync.Mutex
	calls int
	hash  string
	err   error
}

func (f *fakeChain) LogTaskCompletion(_ context.Context, _, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.hash, f.err
}

func (f *fakeChain) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestTaskCompletedHandler(t *testing.T) {
	Convey("Given a task-completed handler", t, func() {
		ctx := context.Background()
		payload := model.TaskCompletedPayload{TaskID: "task-1", OrgID: "org-1", EmployeeID: "emp-1"}

		Convey("When handling a completion", func() {
			scorer := &fakeScorer{}
			chainLogger := &fakeChain{hash: "0xabc"}
			handler := events.NewTaskCompletedHandler(scorer, chainLogger)

			handler.Handle(ctx, payload)
			handler.Wait()

			Convey("Then the score is recomputed and the chain logger fires", func() {
				So(scorer.calls, ShouldResemble, []string{"emp-1"})
				So(chainLogger.callCount(), ShouldEqual, 1)
			})
		})

		Convey("When the recompute fails", func() {
			scorer := &fakeScorer{err: errors.New("db down")}
			chainLogger := &fakeChain{}
			handler := events.NewTaskCompletedHandler(scorer, chainLogger)

			Convey("Then the handler swallows the error", func() {
				So(func() { handler.Handle(ctx, payload) }, ShouldNotPanic)
				handler.Wait()
			})

			Convey("And the chain logger still runs", func() {
				handler.Handle(ctx, payload)
				handler.Wait()
				So(chainLogger.callCount(), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When the chain logger fails", func() {
			scorer := &fakeScorer{}
			chainLogger := &fakeChain{err: errors.New("insufficient funds")}
			handler := events.NewTaskCompletedHandler(scorer, chainLogger)

			Convey("Then the failure is contained", func() {
				So(func() {
					handler.Handle(ctx, payload)
					handler.Wait()
				}, ShouldNotPanic)
			})
		})

		Convey("When the payload has the wrong type", func() {
			scorer := &fakeScorer{}
			chainLogger := &fakeChain{}
			handler := events.NewTaskCompletedHandler(scorer, chainLogger)

			handler.Handle(ctx, "not a payload")
			handler.Wait()

			Convey("Then nothing is invoked", func() {
				So(scorer.calls, ShouldBeEmpty)
				So(chainLogger.callCount(), ShouldEqual, 0)
			})
		})

		Convey("When wired to a bus and the same event is published twice", func() {
			scorer := &fakeScorer{}
			chainLogger := &fakeChain{}
			handler := events.NewTaskCompletedHandler(scorer, chainLogger)
			bus := events.NewBus()
			So(bus.Subscribe(events.TaskCompleted, handler.Handle), ShouldBeNil)

			bus.Publish(ctx, events.TaskCompleted, payload)
			bus.Publish(ctx, events.TaskCompleted, payload)
			handler.Wait()

			Convey("Then the score is simply recomputed twice", func() {
				So(scorer.calls, ShouldResemble, []string{"emp-1", "emp-1"})
			})
		})
	})
}
