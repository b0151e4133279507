package fetch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// fakeFetch returns a Func that answers from results, ignoring ctx unless
// the key has no entry, in which case it waits for cancellation.
func fakeFetch(results map[string]string) Func[string] {
	return func(ctx context.Context, key string) (string, error) {
		v, ok := results[key]
		if !ok {
			<-ctx.Done()
			return "", ctx.Err()
		}
		if strings.HasPrefix(v, "error:") {
			return "", errors.New(strings.TrimPrefix(v, "error:"))
		}
		return v, nil
	}
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func TestSubscribeStartsPending(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"a": "A"}), WithLogger(quietLogger()))

	cmd := r.Subscribe("a")
	if cmd == nil {
		t.Fatal("Subscribe returned nil command")
	}
	if r.State() != Pending {
		t.Fatalf("state = %v, want pending", r.State())
	}
	if !r.InFlight() {
		t.Fatal("expected a fetch in flight")
	}

	if !r.Update(cmd()) {
		t.Fatal("result not recognised")
	}
	if r.State() != Ready || r.Value() != "A" {
		t.Fatalf("state = %v value = %q, want ready A", r.State(), r.Value())
	}
	if r.InFlight() {
		t.Fatal("fetch still in flight after completion")
	}
}

func TestSubscribeSameKeyIsNoop(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"a": "A"}), WithLogger(quietLogger()))
	r.Update(r.Subscribe("a")())

	if cmd := r.Subscribe("a"); cmd != nil {
		t.Fatal("resubscribing the active key started a new fetch")
	}
	if r.State() != Ready {
		t.Fatalf("state = %v, want ready", r.State())
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"a": "A", "b": "B"}), WithLogger(quietLogger()))

	cmdA := r.Subscribe("a")
	cmdB := r.Subscribe("b")

	// B completes first, then A arrives late despite its cancellation.
	r.Update(cmdB())
	if !r.Update(cmdA()) {
		t.Fatal("stale result not recognised as belonging to the resource")
	}

	if r.Key() != "b" || r.State() != Ready || r.Value() != "B" {
		t.Fatalf("key = %q state = %v value = %q, want b ready B", r.Key(), r.State(), r.Value())
	}
}

func TestStaleResultBeforeCurrent(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"a": "A", "b": "B"}), WithLogger(quietLogger()))

	cmdA := r.Subscribe("a")
	cmdB := r.Subscribe("b")

	r.Update(cmdA())
	if r.State() != Pending {
		t.Fatalf("state = %v after stale result, want pending", r.State())
	}
	r.Update(cmdB())
	if r.Value() != "B" {
		t.Fatalf("value = %q, want B", r.Value())
	}
}

func TestKeyChangeCancelsPreviousFetch(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"b": "B"}), WithLogger(quietLogger()))

	cmdA := r.Subscribe("a") // blocks until cancelled
	r.Subscribe("b")

	msg := cmdA().(ResultMsg[string])
	if !errors.Is(msg.Err, context.Canceled) {
		t.Fatalf("stale fetch err = %v, want context.Canceled", msg.Err)
	}
	r.Update(msg)
	if r.State() != Pending || r.Err() != nil {
		t.Fatalf("state = %v err = %v, want pending", r.State(), r.Err())
	}
}

func TestReturningToEarlierKeyIgnoresOldGeneration(t *testing.T) {
	results := map[string]string{"a": "A1", "b": "B"}
	r := New(context.Background(), fakeFetch(results), WithLogger(quietLogger()))

	first := r.Subscribe("a")
	r.Subscribe("b")
	second := r.Subscribe("a")

	results["a"] = "A2"
	r.Update(second())
	results["a"] = "A1"
	r.Update(first())

	if r.Value() != "A2" {
		t.Fatalf("value = %q, want A2", r.Value())
	}
}

func TestCancelledFetchIsPendingNotFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	r := New(ctx, fakeFetch(nil), WithLogger(log.New(&buf)))

	cmd := r.Subscribe("a")
	cancel()
	r.Update(cmd())

	if r.State() != Pending {
		t.Fatalf("state = %v, want pending", r.State())
	}
	if buf.Len() != 0 {
		t.Fatalf("cancellation was logged: %q", buf.String())
	}
}

func TestFailureIsReportedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	r := New(context.Background(), fakeFetch(map[string]string{"a": "error:connection refused"}), WithLogger(log.New(&buf)))

	r.Update(r.Subscribe("a")())

	if r.State() != Failed {
		t.Fatalf("state = %v, want failed", r.State())
	}
	if r.Err() == nil || r.Err().Error() != "connection refused" {
		t.Fatalf("err = %v", r.Err())
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

func TestReloadAfterFailure(t *testing.T) {
	results := map[string]string{"a": "error:boom"}
	r := New(context.Background(), fakeFetch(results), WithLogger(quietLogger()))
	r.Update(r.Subscribe("a")())

	results["a"] = "A"
	cmd := r.Reload()
	if cmd == nil {
		t.Fatal("Reload returned nil")
	}
	if r.State() != Pending {
		t.Fatalf("state = %v after Reload, want pending", r.State())
	}
	r.Update(cmd())
	if r.State() != Ready || r.Value() != "A" {
		t.Fatalf("state = %v value = %q", r.State(), r.Value())
	}
}

func TestUnsubscribeIgnoresLateResults(t *testing.T) {
	r := New(context.Background(), fakeFetch(map[string]string{"a": "A"}), WithLogger(quietLogger()))

	cmd := r.Subscribe("a")
	r.Unsubscribe()
	if r.InFlight() {
		t.Fatal("fetch still in flight after Unsubscribe")
	}
	r.Update(cmd())

	if r.State() != Pending {
		t.Fatalf("state = %v, want pending", r.State())
	}
	if r.Reload() != nil {
		t.Fatal("Reload after Unsubscribe started a fetch")
	}
}

func TestUpdateIgnoresForeignMessages(t *testing.T) {
	r1 := New(context.Background(), fakeFetch(map[string]string{"a": "A"}), WithLogger(quietLogger()))
	r2 := New(context.Background(), fakeFetch(map[string]string{"a": "A"}), WithLogger(quietLogger()))

	msg := r1.Subscribe("a")()
	r2.Subscribe("a")

	if r2.Update(msg) {
		t.Fatal("r2 accepted r1's result")
	}
	if r2.Update("unrelated") {
		t.Fatal("accepted a non-result message")
	}
}
