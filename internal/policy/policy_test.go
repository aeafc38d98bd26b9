package policy

import (
	"errors"
	"testing"
)

func testCatalog() []Policy {
	return []Policy{
		{ID: "clinic", Name: "Clinic", Cost: 100, Effect: Effect{DeathRate: -0.1}, Duration: 3},
		{ID: "farms", Name: "Farms", Cost: 50, Effect: Effect{FoodProduction: 0.2}},
		{ID: "free", Name: "Free", Effect: Effect{Economy: 0.1}},
	}
}

// wallet is a Treasury holding a plain balance.
type wallet float64

func (w *wallet) Spend(amount float64) bool {
	if float64(*w) < amount {
		return false
	}
	*w -= wallet(amount)
	return true
}

func TestActivateDeductsCostOnce(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(120.0)
	if err := r.Activate("clinic", &funds); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if funds != 20 {
		t.Fatalf("funds = %v; want 20", funds)
	}
	if err := r.Activate("clinic", &funds); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("second Activate err = %v; want ErrAlreadyActive", err)
	}
	if funds != 20 {
		t.Fatalf("funds changed on failed activation: %v", funds)
	}
}

func TestActivateFailures(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(10.0)
	if err := r.Activate("nope", &funds); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("unknown err = %v", err)
	}
	if err := r.Activate("farms", &funds); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("poor err = %v", err)
	}
	if err := r.Activate("farms", nil); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("nil funds err = %v", err)
	}
	if funds != 10 || len(r.ActiveIDs()) != 0 || r.Aggregate() != (Effect{}) {
		t.Errorf("state changed after failures: funds=%v active=%v", funds, r.ActiveIDs())
	}
	if err := r.Activate("free", nil); err != nil {
		t.Errorf("free policy with nil funds: %v", err)
	}
}

func TestDeactivateIdempotent(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(1000.0)
	_ = r.Activate("farms", &funds)
	if !r.Deactivate("farms") {
		t.Fatal("Deactivate returned false for active policy")
	}
	if r.Deactivate("farms") || r.Deactivate("nope") {
		t.Fatal("Deactivate returned true for inactive or unknown policy")
	}
	if r.Aggregate() != (Effect{}) {
		t.Errorf("aggregate = %+v; want zero", r.Aggregate())
	}
}

func TestAggregateSums(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(1000.0)
	_ = r.Activate("farms", &funds)
	_ = r.Activate("free", &funds)
	got := r.Aggregate()
	if got.FoodProduction != 0.2 || got.Economy != 0.1 {
		t.Errorf("aggregate = %+v", got)
	}
	if ids := r.ActiveIDs(); len(ids) != 2 || ids[0] != "farms" || ids[1] != "free" {
		t.Errorf("ActiveIDs = %v", ids)
	}
}

// A duration-3 policy is visible to exactly three ticks: the systems of tick n
// read the aggregate published before Tick is called for n.
func TestBoundedPolicyExpires(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(1000.0)
	if err := r.Activate("clinic", &funds); err != nil {
		t.Fatal(err)
	}

	var seen []float64
	var expiredAt int
	for tick := 1; tick <= 5; tick++ {
		seen = append(seen, r.Aggregate().DeathRate)
		if exp := r.Tick(); len(exp) > 0 {
			if exp[0].ID != "clinic" {
				t.Fatalf("expired %q; want clinic", exp[0].ID)
			}
			expiredAt = tick
		}
	}

	want := []float64{-0.1, -0.1, -0.1, 0, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("tick %d death rate = %v; want %v", i+1, seen[i], want[i])
		}
	}
	if expiredAt != 3 {
		t.Errorf("expired at tick %d; want 3", expiredAt)
	}
	if p, _ := r.Get("clinic"); p.Active {
		t.Error("clinic still active after expiry")
	}
}

func TestUnboundedPolicyNeverExpires(t *testing.T) {
	r := NewRegistry(testCatalog())
	funds := wallet(1000.0)
	_ = r.Activate("farms", &funds)
	for i := 0; i < 100; i++ {
		if exp := r.Tick(); len(exp) != 0 {
			t.Fatalf("unbounded policy expired: %v", exp)
		}
	}
	if p, _ := r.Get("farms"); p.Remaining() != -1 {
		t.Errorf("Remaining = %d; want -1", p.Remaining())
	}
}

func TestDefaultCatalogUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range DefaultCatalog() {
		if seen[p.ID] {
			t.Errorf("duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Cost < 0 || p.Duration < 0 {
			t.Errorf("%s: negative cost or duration", p.ID)
		}
	}
}
