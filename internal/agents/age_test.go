package agents

import "testing"

func TestFertilityCurve(t *testing.T) {
	cases := []struct {
		age  float64
		want float64
	}{
		{17, 0},
		{18, 0.5},
		{22, 0.8},
		{25, 1.0},
		{27, 1.0},
		{30, 1.0},
		{33, 0.7},
		{38, 0.4},
		{45, 0.1},
		{46, 0},
	}
	for _, c := range cases {
		if got := FertilityCurve(GenderFemale, c.age); got != c.want {
			t.Errorf("FertilityCurve(female, %v) = %v; want %v", c.age, got, c.want)
		}
	}
	if got := FertilityCurve(GenderMale, 27); got != 0 {
		t.Errorf("FertilityCurve(male, 27) = %v; want 0", got)
	}
}

func TestFertilityRamp(t *testing.T) {
	if got := Fertility(GenderFemale, 23); got != 0.5 {
		t.Errorf("Fertility(female, 23) = %v; want 0.5", got)
	}
	if got := Fertility(GenderFemale, 40); got != 1 {
		t.Errorf("Fertility(female, 40) = %v; want 1", got)
	}
	if got := Fertility(GenderFemale, 50); got != 0 {
		t.Errorf("Fertility(female, 50) = %v; want 0", got)
	}
	if got := Fertility(GenderMale, 25); got != 0 {
		t.Errorf("Fertility(male, 25) = %v; want 0", got)
	}
}

func TestRecoveryAndDecay(t *testing.T) {
	cases := []struct {
		age            float64
		recover, decay float64
	}{
		{10, 0.5, 0},
		{40, 0.3, 0},
		{65, 0.1, 0.1},
		{75, 0, 0.1},
		{85, 0, 0.3},
	}
	for _, c := range cases {
		if got := Recovery(c.age); got != c.recover {
			t.Errorf("Recovery(%v) = %v; want %v", c.age, got, c.recover)
		}
		if got := Decay(c.age); got != c.decay {
			t.Errorf("Decay(%v) = %v; want %v", c.age, got, c.decay)
		}
	}
}

func TestAgeDerivedFromBirthTick(t *testing.T) {
	idn := &Identity{BirthTick: -24}
	if got := idn.Age(0); got != 2 {
		t.Fatalf("Age(0) = %v; want 2", got)
	}
	prev := idn.Age(0)
	for tick := int64(1); tick < 40; tick++ {
		age := idn.Age(tick)
		if age < prev {
			t.Fatalf("age went backwards at tick %d", tick)
		}
		prev = age
	}
}

func TestHealthClamped(t *testing.T) {
	b := &Biological{Health: 99, Alive: true}
	b.AdjustHealth(5)
	if b.Health != MaxHealth {
		t.Errorf("Health = %v; want %v", b.Health, MaxHealth)
	}
	b.AdjustHealth(-500)
	if b.Health != 0 {
		t.Errorf("Health = %v; want 0", b.Health)
	}
}

func TestDieOnce(t *testing.T) {
	b := &Biological{Health: 50, Alive: true}
	if !b.Die(10) {
		t.Fatal("first Die should succeed")
	}
	if b.Die(20) {
		t.Fatal("second Die should be rejected")
	}
	if b.DeathTick != 10 {
		t.Errorf("DeathTick = %d; want 10", b.DeathTick)
	}
}

func TestEducationNeverDecreases(t *testing.T) {
	c := &Cognitive{Education: 4}
	c.Learn(-2)
	if c.Education != 4 {
		t.Errorf("Education = %v; want 4", c.Education)
	}
	c.Learn(20)
	if c.Education != MaxEducation {
		t.Errorf("Education = %v; want %v", c.Education, MaxEducation)
	}
}
