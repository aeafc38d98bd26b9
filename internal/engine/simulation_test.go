package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
	"github.com/talgya/populace/internal/ecs"
	"github.com/talgya/populace/internal/ending"
	"github.com/talgya/populace/internal/policy"
)

func testOptions(seed int64, population int) Options {
	opts := DefaultOptions()
	opts.Seed = seed
	opts.Population = population
	return opts
}

// addPerson creates a person aged exactly age years at the simulation's tick.
func addPerson(t *testing.T, s *Simulation, g agents.Gender, age, health float64) ecs.EntityID {
	t.Helper()
	id := s.World.CreateEntity()
	birth := s.tick - int64(age*agents.TicksPerYear)
	for _, c := range []ecs.Component{
		&agents.Identity{Name: "Test Person", Gender: g, BirthTick: birth},
		&agents.Biological{Health: health, Fertility: agents.Fertility(g, age), Alive: true},
		&agents.Cognitive{},
		&agents.Relationship{},
		&agents.Occupation{},
	} {
		if err := s.World.Add(id, c); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return id
}

func load(t *testing.T, s *Simulation, id ecs.EntityID) agents.Person {
	t.Helper()
	p, ok := agents.Load(s.World, id)
	if !ok {
		t.Fatalf("entity %d incomplete", id)
	}
	return p
}

func checkInvariants(t *testing.T, s *Simulation) {
	t.Helper()
	for _, id := range s.World.Query(agents.PersonKinds, nil) {
		p := load(t, s, id)
		if p.Bio.Health < 0 || p.Bio.Health > agents.MaxHealth {
			t.Fatalf("tick %d: entity %d health %v out of bounds", s.tick, id, p.Bio.Health)
		}
		if p.Cog.Education < 0 || p.Cog.Education > agents.MaxEducation {
			t.Fatalf("tick %d: entity %d education %v out of bounds", s.tick, id, p.Cog.Education)
		}
		if !p.Rel.HasPartner() {
			continue
		}
		if !p.Bio.Alive {
			t.Fatalf("tick %d: dead entity %d still partnered to %d", s.tick, id, p.Rel.Partner)
		}
		partner := load(t, s, p.Rel.Partner)
		if partner.Rel.Partner != id || !partner.Bio.Alive {
			t.Fatalf("tick %d: asymmetric partner %d -> %d -> %d", s.tick, id, p.Rel.Partner, partner.Rel.Partner)
		}
	}
}

func TestLongRunInvariants(t *testing.T) {
	s := NewSimulation(testOptions(11, 150))
	for i := 0; i < 360 && !s.Ended(); i++ {
		s.Tick()
		checkInvariants(t, s)
	}
}

func TestDeathWidowsPartner(t *testing.T) {
	s := NewSimulation(testOptions(3, 0))
	a := addPerson(t, s, agents.GenderMale, 40, 90)
	b := addPerson(t, s, agents.GenderFemale, 38, 90)
	if !agents.Marry(s.World, a, b) {
		t.Fatal("Marry failed")
	}

	var updated int
	s.World.Subscribe(func(n ecs.Notice) {
		if n.Type == ecs.ComponentUpdated && n.Entity == a && n.Kind == ecs.KindBiological {
			updated++
		}
	})

	s.tick = 5
	s.kill(load(t, s, a), 5, 40)

	pa, pb := load(t, s, a), load(t, s, b)
	if pa.Bio.Alive || pa.Bio.DeathTick != 5 {
		t.Errorf("dead = %+v", pa.Bio)
	}
	if pa.Rel.HasPartner() || pb.Rel.HasPartner() {
		t.Errorf("partners not cleared: %d / %d", pa.Rel.Partner, pb.Rel.Partner)
	}
	if updated == 0 {
		t.Error("no ComponentUpdated notice for the death")
	}
	if len(s.batch) != 1 || s.batch[0].Kind != EventDied || s.batch[0].Other != b {
		t.Errorf("events = %+v", s.batch)
	}

	// Dying twice is a no-op.
	s.kill(pa, 9, 40)
	if load(t, s, a).Bio.DeathTick != 5 || len(s.batch) != 1 {
		t.Error("second death changed state")
	}
}

func TestBirthEligibilityChildLimit(t *testing.T) {
	s := NewSimulation(testOptions(5, 0))
	mother := addPerson(t, s, agents.GenderFemale, 27, 90)
	father := addPerson(t, s, agents.GenderMale, 30, 90)
	agents.Marry(s.World, mother, father)

	rel := agents.RelationshipOf(s.World, mother)
	for i := 0; i < agents.MaxChildren; i++ {
		rel.AddChild(ecs.EntityID(1000 + i))
	}
	s.effect = policy.Effect{FertilityRate: 1}
	if p := BirthProbability(27, s.effect.FertilityRate); p != 1 {
		t.Fatalf("BirthProbability = %v; want 1", p)
	}

	before := s.World.Len()
	s.tick = 1
	s.processBirths(1)
	if s.World.Len() != before || len(s.batch) != 0 {
		t.Fatalf("birth with %d children", agents.MaxChildren)
	}

	rel.Children = rel.Children[:agents.MaxChildren-1]
	s.processBirths(1)
	if s.World.Len() != before+1 {
		t.Fatalf("no birth with %d children at p=1", agents.MaxChildren-1)
	}
	child := load(t, s, s.batch[0].Entity)
	if child.Rel.Parents != [2]ecs.EntityID{mother, father} {
		t.Errorf("parents = %v", child.Rel.Parents)
	}
	if !load(t, s, father).Rel.IsParentOf(child.ID) {
		t.Error("father missing child link")
	}
	if child.Bio.Health < 70 || child.Bio.Health > 100 || child.Cog.Education != 0 || child.Occ.Job != agents.JobUnemployed {
		t.Errorf("newborn = %+v %+v %+v", child.Bio, child.Cog, child.Occ)
	}
}

func TestBirthRequiresPartnerAndAge(t *testing.T) {
	s := NewSimulation(testOptions(5, 0))
	single := addPerson(t, s, agents.GenderFemale, 27, 90)
	old := addPerson(t, s, agents.GenderFemale, 47, 90)
	oldHusband := addPerson(t, s, agents.GenderMale, 47, 90)
	agents.Marry(s.World, old, oldHusband)

	s.effect = policy.Effect{FertilityRate: 1}
	s.tick = 1
	s.processBirths(1)
	if len(s.batch) != 0 {
		t.Errorf("births = %+v; want none", s.batch)
	}
	_ = single
}

func TestDeterministicReplay(t *testing.T) {
	a := NewSimulation(testOptions(42, 120))
	b := NewSimulation(testOptions(42, 120))
	if a.Digest() != b.Digest() {
		t.Fatal("digests differ after seeding")
	}
	for tick := 1; tick <= 240; tick++ {
		if tick == 10 {
			if _, err := a.ActivatePolicy("agricultural_reform"); err != nil {
				t.Fatalf("activate: %v", err)
			}
			if _, err := b.ActivatePolicy("agricultural_reform"); err != nil {
				t.Fatalf("activate: %v", err)
			}
		}
		ea, eb := a.Tick(), b.Tick()
		if len(ea) != len(eb) {
			t.Fatalf("tick %d: %d vs %d events", tick, len(ea), len(eb))
		}
		if a.Digest() != b.Digest() {
			t.Fatalf("tick %d: digests diverged", tick)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewSimulation(testOptions(1, 60))
	b := NewSimulation(testOptions(2, 60))
	if a.Digest() == b.Digest() {
		t.Error("different seeds produced identical populations")
	}
}

func TestMassExtinctionEndsRun(t *testing.T) {
	// Four unpartnered women: nobody can marry or give birth, so the
	// population stays below the extinction floor through the grace year.
	s := NewSimulation(testOptions(9, 0))
	for _, age := range []float64{22, 30, 35, 41} {
		addPerson(t, s, agents.GenderFemale, age, 90)
	}
	if got := len(agents.Living(s.World)); got != 4 {
		t.Fatalf("living = %d; want 4", got)
	}
	var ended []Event
	for i := 0; i < 20; i++ {
		for _, e := range s.Tick() {
			if e.Kind == EventRunEnded {
				ended = append(ended, e)
			}
		}
	}
	if len(ended) != 1 || ended[0].Tick != ending.GraceTicks+1 {
		t.Fatalf("RunEnded events = %+v; want one at tick %d", ended, ending.GraceTicks+1)
	}
	out, ok := s.Ending.Result()
	if !ok || out.Kind != ending.Extinction {
		t.Fatalf("outcome = %+v", out)
	}

	digest, tick := s.Digest(), s.CurrentTick()
	if ev := s.Tick(); ev != nil {
		t.Errorf("Tick after ending returned %v", ev)
	}
	if _, err := s.ActivatePolicy("austerity"); !errors.Is(err, ErrRunEnded) {
		t.Errorf("ActivatePolicy after ending err = %v", err)
	}
	if s.Digest() != digest || s.CurrentTick() != tick {
		t.Error("state changed after terminal ending")
	}
}

func TestZeroPopulationEconomy(t *testing.T) {
	opts := testOptions(4, 0)
	opts.WorldEvents = false
	opts.Resources = economy.Stocks{Money: 1000}
	s := NewSimulation(opts)
	s.Tick()
	if s.Pool.Production != (economy.Stocks{}) {
		t.Errorf("production = %+v; want zero", s.Pool.Production)
	}
	if s.Pool.Consumption != (economy.Stocks{Money: economy.InfrastructureCost}) {
		t.Errorf("consumption = %+v", s.Pool.Consumption)
	}
	if s.Pool.Stock.Money != 950 {
		t.Errorf("money = %v; want 950", s.Pool.Stock.Money)
	}
}

func TestPolicyExpiryThroughTicks(t *testing.T) {
	opts := testOptions(6, 40)
	opts.Policies = []policy.Policy{{ID: "relief", Name: "Relief", Effect: policy.Effect{DeathRate: -0.1}, Duration: 3}}
	s := NewSimulation(opts)
	if _, err := s.ActivatePolicy("relief"); err != nil {
		t.Fatal(err)
	}

	want := []float64{-0.1, -0.1, -0.1, 0, 0}
	expiredAt := int64(-1)
	for i, w := range want {
		for _, e := range s.Tick() {
			if e.Kind == EventPolicyExpired {
				expiredAt = e.Tick
			}
		}
		if s.effect.DeathRate != w {
			t.Errorf("tick %d read death rate %v; want %v", i+1, s.effect.DeathRate, w)
		}
	}
	if expiredAt != 3 {
		t.Errorf("expired at tick %d; want 3", expiredAt)
	}
}

func TestFeedbackStarvation(t *testing.T) {
	opts := testOptions(8, 0)
	opts.WorldEvents = false
	opts.Resources = economy.Stocks{Food: 0, Housing: 100, Medicine: 50, Money: 500}
	s := NewSimulation(opts)
	id := addPerson(t, s, agents.GenderMale, 30, 80)

	s.tick = 1
	s.processResources(1)
	if got := load(t, s, id).Bio.Health; got != 78 {
		t.Errorf("health = %v; want 78 after starvation", got)
	}
	var short bool
	for _, e := range s.batch {
		if e.Kind == EventShortage && e.Meta["resource"] == "food" {
			short = true
		}
	}
	if !short {
		t.Error("no food shortage event")
	}
}

func TestCloseKin(t *testing.T) {
	s := NewSimulation(testOptions(8, 0))
	mother := addPerson(t, s, agents.GenderFemale, 40, 90)
	father := addPerson(t, s, agents.GenderMale, 42, 90)
	agents.Marry(s.World, mother, father)
	son, err := s.Spawner.SpawnChild(s.World, mother, father, 0)
	if err != nil {
		t.Fatal(err)
	}
	daughter, err := s.Spawner.SpawnChild(s.World, mother, father, 0)
	if err != nil {
		t.Fatal(err)
	}
	stranger := addPerson(t, s, agents.GenderFemale, 20, 90)

	if !closeKin(load(t, s, mother), load(t, s, son)) {
		t.Error("mother and son not close kin")
	}
	if !closeKin(load(t, s, son), load(t, s, daughter)) {
		t.Error("siblings not close kin")
	}
	if closeKin(load(t, s, son), load(t, s, stranger)) {
		t.Error("strangers reported as kin")
	}
}

func TestDeathProbability(t *testing.T) {
	if p := DeathProbability(30, 90, 0); p != 0.001 {
		t.Errorf("young healthy = %v; want 0.001", p)
	}
	if p := DeathProbability(70, 20, 0); p != 0.001*2*2 {
		t.Errorf("old sick = %v; want 0.004", p)
	}
	if p := DeathProbability(30, 90, 5); p != 1 {
		t.Errorf("clamped = %v; want 1", p)
	}
	if p := DeathProbability(30, 90, -1); p != 0 {
		t.Errorf("clamped = %v; want 0", p)
	}
}

func TestWorldEventCooldown(t *testing.T) {
	w := NewWorldEvents(5)
	for i := range w.hazards {
		w.hazards[i].threshold = 0
	}
	var fired []int64
	for tick := int64(1); tick <= 100; tick++ {
		for _, i := range w.due(tick) {
			if i == 0 {
				fired = append(fired, tick)
			}
		}
	}
	want := []int64{1, 25, 49, 73, 97}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v; want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired = %v; want %v", fired, want)
		}
	}
}

func TestWorldEventIntensityRange(t *testing.T) {
	w := NewWorldEvents(77)
	for tick := int64(0); tick < 500; tick++ {
		for i := range w.hazards {
			if v := w.Intensity(i, tick); v < 0 || v > 1 {
				t.Fatalf("intensity %v out of [0,1]", v)
			}
		}
	}
}

func TestCalendar(t *testing.T) {
	if MonthOf(1) != 0 || MonthOf(12) != 11 || MonthOf(13) != 0 {
		t.Error("MonthOf mismatch")
	}
	if YearOf(12) != 1 || YearOf(13) != 2 {
		t.Error("YearOf mismatch")
	}
	if !IsYearEnd(24) || IsYearEnd(0) || IsYearEnd(5) {
		t.Error("IsYearEnd mismatch")
	}
	if got := SimTime(8); got != "August (Summer) Year 1" {
		t.Errorf("SimTime(8) = %q", got)
	}
}

func TestClockAdvance(t *testing.T) {
	c := NewClock(time.Second)
	if n := c.Advance(5 * time.Second); n != 0 {
		t.Fatalf("stopped clock produced %d ticks", n)
	}
	c.Start()
	if err := c.SetSpeed(Speed2x); err != nil {
		t.Fatal(err)
	}
	if n := c.Advance(1500 * time.Millisecond); n != 3 {
		t.Errorf("Advance = %d; want 3", n)
	}
	if n := c.Advance(400 * time.Millisecond); n != 0 {
		t.Errorf("Advance = %d; want 0", n)
	}
	if n := c.Advance(100 * time.Millisecond); n != 1 {
		t.Errorf("Advance = %d; want 1", n)
	}
	if err := c.SetSpeed(3); !errors.Is(err, ErrInvalidSpeed) {
		t.Errorf("SetSpeed(3) err = %v", err)
	}
	_ = c.SetSpeed(SpeedPaused)
	if n := c.Advance(time.Minute); n != 0 {
		t.Errorf("paused clock produced %d ticks", n)
	}
}

func TestParseSpeed(t *testing.T) {
	cases := map[string]Speed{"paused": SpeedPaused, "1": Speed1x, "2x": Speed2x, "10x": Speed10x}
	for in, want := range cases {
		got, err := ParseSpeed(in)
		if err != nil || got != want {
			t.Errorf("ParseSpeed(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSpeed("3x"); !errors.Is(err, ErrInvalidSpeed) {
		t.Errorf("ParseSpeed(3x) err = %v", err)
	}
}

func TestActivatePolicyPaysFromPool(t *testing.T) {
	opts := testOptions(3, 0)
	opts.Resources = economy.Stocks{Money: 650}
	s := NewSimulation(opts)

	if _, err := s.ActivatePolicy("universal_healthcare"); !errors.Is(err, policy.ErrInsufficientFunds) {
		t.Fatalf("err = %v; want ErrInsufficientFunds", err)
	}
	if s.Pool.Stock.Money != 650 {
		t.Fatalf("money = %v after refused activation; want 650", s.Pool.Stock.Money)
	}
	if _, err := s.ActivatePolicy("agricultural_reform"); err != nil {
		t.Fatalf("ActivatePolicy: %v", err)
	}
	if s.Pool.Stock.Money != 50 {
		t.Errorf("money = %v; want 50", s.Pool.Stock.Money)
	}
}
