package component

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/cloudkit/errors"
)

// fakeClient implements Component for testing.
type fakeClient struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	events   *[]string
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Start(ctx context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "start:"+f.name)
	}
	return f.startErr
}

func (f *fakeClient) Stop(ctx context.Context) error {
	if f.events != nil {
		*f.events = append(*f.events, "stop:"+f.name)
	}
	if _, ok := ctx.Deadline(); !ok {
		return stderrors.New("stop called without deadline")
	}
	return f.stopErr
}

func (f *fakeClient) Health(ctx context.Context) Health { return f.health }

type describedClient struct {
	fakeClient
	desc Description
}

func (d *describedClient) Describe() Description { return d.desc }

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&describedClient{
		fakeClient: fakeClient{name: "rds"},
		desc:       Description{Type: "cloud-api", Details: "https://rds.us-east-1.amazonaws.com/", Port: 443},
	})
	_ = r.Register(&fakeClient{name: "fixture"})

	got := r.Describe()
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptions, got %d", len(got))
	}
	if got[0].Name != "rds" || got[0].Type != "cloud-api" || got[0].Port != 443 {
		t.Errorf("unexpected description %+v", got[0])
	}
	if got[1] != (Description{Name: "fixture"}) {
		t.Errorf("expected name-only description, got %+v", got[1])
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeClient{name: "rds"})

	err := r.Register(&fakeClient{name: "rds"})
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	r := NewRegistry()
	var events []string
	for _, name := range []string{"rds", "compute", "dns"} {
		_ = r.Register(&fakeClient{name: name, events: &events})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start:rds", "start:compute", "start:dns", "stop:dns", "stop:compute", "stop:rds"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], events[i])
		}
	}
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	r := NewRegistry()
	var events []string
	_ = r.Register(&fakeClient{name: "rds", events: &events})
	_ = r.Register(&fakeClient{name: "compute", events: &events, startErr: stderrors.New("bad region")})
	_ = r.Register(&fakeClient{name: "dns", events: &events})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected StartAll error")
	}
	events = events[:0]

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(events) != 1 || events[0] != "stop:rds" {
		t.Errorf("expected only rds stopped, got %v", events)
	}
}

func TestRegistry_StopAllJoinsErrors(t *testing.T) {
	r := NewRegistry()
	first := stderrors.New("close rds")
	second := stderrors.New("close dns")
	_ = r.Register(&fakeClient{name: "rds", stopErr: first})
	_ = r.Register(&fakeClient{name: "dns", stopErr: second})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !stderrors.Is(err, first) || !stderrors.Is(err, second) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeClient{name: "rds", health: Health{Name: "rds", Status: StatusHealthy}})
	_ = r.Register(&fakeClient{name: "dns", health: Health{Name: "dns", Status: StatusUnhealthy, Message: "no connection"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health %+v", results)
	}
	if results[0].Name != "rds" || results[1].Name != "dns" {
		t.Errorf("expected registration order, got %+v", results)
	}
}
