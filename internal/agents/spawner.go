// Agent spawning: seeds the initial population with demographics, occupations,
// schooling and families, and creates newborns.
package agents

import (
	"fmt"

	"github.com/talgya/populace/internal/ecs"
	"github.com/talgya/populace/internal/entropy"
)

// Spawner creates people in a world. It draws from the simulation's shared random
// stream so seeded runs replay.
type Spawner struct {
	rng entropy.Source
}

// NewSpawner creates a spawner drawing from src.
func NewSpawner(src entropy.Source) *Spawner {
	return &Spawner{rng: src}
}

// SpawnPopulation seeds count people at the given tick, pairs some adults into
// couples and links seeded children to plausible parents.
func (s *Spawner) SpawnPopulation(w *ecs.World, count int, tick int64) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, s.spawnOne(w, tick))
	}
	s.seedCouples(w, ids, tick)
	s.seedFamilies(w, ids, tick)
	return ids
}

func (s *Spawner) spawnOne(w *ecs.World, tick int64) ecs.EntityID {
	gender := s.randomGender()

	// Age: weighted toward working-age adults, some children and elderly.
	age := s.weightedAge()
	birth := tick - int64(age*TicksPerYear)
	age = AgeAt(birth, tick)

	job := JobUnemployed
	if age >= 18 {
		job = s.adultJob()
	}

	id := w.CreateEntity()
	mustAdd(w, id, &Identity{Name: s.generateName(gender), Gender: gender, BirthTick: birth})
	mustAdd(w, id, &Biological{
		Health:    ClampHealth(entropy.Uniform(s.rng, 70, 100)),
		Fertility: Fertility(gender, age),
		Alive:     true,
	})
	mustAdd(w, id, &Cognitive{Education: s.educationForAge(age, job)})
	mustAdd(w, id, &Relationship{})
	mustAdd(w, id, &Occupation{Job: job})
	return id
}

// SpawnChild creates a newborn of mother and father at tick.
func (s *Spawner) SpawnChild(w *ecs.World, mother, father ecs.EntityID, tick int64) (ecs.EntityID, error) {
	mRel := RelationshipOf(w, mother)
	fRel := RelationshipOf(w, father)
	if mRel == nil || fRel == nil {
		return ecs.NilEntity, fmt.Errorf("spawn child of %d and %d: %w", mother, father, ecs.ErrNoComponent)
	}

	gender := s.randomGender()
	rel := &Relationship{}
	rel.SetParents(mother, father)

	id := w.CreateEntity()
	mustAdd(w, id, &Identity{Name: s.childName(w, gender, father), Gender: gender, BirthTick: tick})
	mustAdd(w, id, &Biological{
		Health: ClampHealth(entropy.Uniform(s.rng, 70, 100)),
		Alive:  true,
	})
	mustAdd(w, id, &Cognitive{})
	mustAdd(w, id, rel)
	mustAdd(w, id, &Occupation{Job: JobUnemployed})

	mRel.AddChild(id)
	fRel.AddChild(id)
	return id, nil
}

// ChooseJob picks an occupation for an adult entering the workforce.
// Educated adults lean toward science.
func (s *Spawner) ChooseJob(education float64) Job {
	r := s.rng.Float64()
	if education >= 6 && r < 0.5 {
		return JobScientist
	}
	r = s.rng.Float64()
	switch {
	case r < 0.55:
		return JobFarmer
	case r < 0.92:
		return JobWorker
	default:
		return JobScientist
	}
}

func (s *Spawner) randomGender() Gender {
	if s.rng.Float64() < 0.5 {
		return GenderFemale
	}
	return GenderMale
}

func (s *Spawner) weightedAge() float64 {
	// Bell curve centered around 30, range 0–75.
	return Clamp(30.0+s.rng.NormFloat64()*14.0, 0, 75)
}

func (s *Spawner) adultJob() Job {
	r := s.rng.Float64()
	switch {
	case r < 0.35:
		return JobFarmer
	case r < 0.70:
		return JobWorker
	case r < 0.82:
		return JobScientist
	default:
		return JobUnemployed
	}
}

func (s *Spawner) educationForAge(age float64, job Job) float64 {
	if age < 6 {
		return 0
	}
	// Roughly half a level per school year, up to age 18.
	years := Clamp(age-6, 0, 12)
	edu := years * 0.5 * entropy.Uniform(s.rng, 0.5, 1.0)
	if job == JobScientist {
		edu += 3
	}
	return Clamp(edu, 0, MaxEducation)
}

// seedCouples pairs a share of unpartnered adults. Seeding uses a slightly narrower
// window for women than the marriage system does.
func (s *Spawner) seedCouples(w *ecs.World, ids []ecs.EntityID, tick int64) {
	var men, women []ecs.EntityID
	for _, id := range ids {
		idn := IdentityOf(w, id)
		age := idn.Age(tick)
		switch {
		case idn.Gender == GenderMale && age >= 18 && age <= 50:
			men = append(men, id)
		case idn.Gender == GenderFemale && age >= 18 && age <= 46:
			women = append(women, id)
		}
	}
	n := min(len(men), len(women))
	for i := 0; i < n; i++ {
		if s.rng.Float64() >= 0.6 {
			continue
		}
		Marry(w, men[i], women[i])
	}
}

// seedFamilies links seeded children to a seeded couple whose mother was of
// childbearing age when the child was born.
func (s *Spawner) seedFamilies(w *ecs.World, ids []ecs.EntityID, tick int64) {
	var mothers []ecs.EntityID
	for _, id := range ids {
		idn := IdentityOf(w, id)
		if idn.Gender == GenderFemale && RelationshipOf(w, id).HasPartner() {
			mothers = append(mothers, id)
		}
	}
	if len(mothers) == 0 {
		return
	}
	for _, id := range ids {
		child := IdentityOf(w, id)
		if child.Age(tick) >= 18 {
			continue
		}
		start := s.rng.Intn(len(mothers))
		for k := 0; k < len(mothers); k++ {
			m := mothers[(start+k)%len(mothers)]
			mRel := RelationshipOf(w, m)
			motherAgeAtBirth := IdentityOf(w, m).Age(child.BirthTick)
			if len(mRel.Children) >= MaxChildren || motherAgeAtBirth < 18 || motherAgeAtBirth > 45 {
				continue
			}
			father := mRel.Partner
			RelationshipOf(w, id).SetParents(m, father)
			mRel.AddChild(id)
			RelationshipOf(w, father).AddChild(id)
			break
		}
	}
}

// Marry sets mutual partner references. Both must be unpartnered.
func Marry(w *ecs.World, a, b ecs.EntityID) bool {
	ra, rb := RelationshipOf(w, a), RelationshipOf(w, b)
	if ra == nil || rb == nil || a == b || ra.HasPartner() || rb.HasPartner() {
		return false
	}
	ra.Partner = b
	rb.Partner = a
	return true
}

// Widow clears the partner link on id and on its partner.
func Widow(w *ecs.World, id ecs.EntityID) ecs.EntityID {
	rel := RelationshipOf(w, id)
	if rel == nil || !rel.HasPartner() {
		return ecs.NilEntity
	}
	partner := rel.Partner
	rel.Partner = ecs.NilEntity
	if pr := RelationshipOf(w, partner); ecs.Invariant(pr != nil, "partner without relationship", "entity", id, "partner", partner) {
		if ecs.Invariant(pr.Partner == id, "asymmetric partner link", "entity", id, "partner", partner) {
			pr.Partner = ecs.NilEntity
		}
	}
	return partner
}

func (s *Spawner) generateName(g Gender) string {
	firsts := maleNames
	if g == GenderFemale {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

// childName keeps the father's family name.
func (s *Spawner) childName(w *ecs.World, g Gender, father ecs.EntityID) string {
	firsts := maleNames
	if g == GenderFemale {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	if idn := IdentityOf(w, father); idn != nil {
		if last := familyName(idn.Name); last != "" {
			return first + " " + last
		}
	}
	return first + " " + lastNames[s.rng.Intn(len(lastNames))]
}

func familyName(full string) string {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == ' ' {
			return full[i+1:]
		}
	}
	return ""
}

func mustAdd(w *ecs.World, id ecs.EntityID, c ecs.Component) {
	// id was just created by w, so Add cannot fail.
	if err := w.Add(id, c); err != nil {
		panic(err)
	}
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Per", "Quinn", "Rowan", "Stellan", "Theron", "Ulric",
	"Varen", "Wren", "Yorick", "Zander", "Arlen", "Beric", "Cade",
	"Dorian", "Edric", "Falk", "Gunnar", "Hugo", "Ivar", "Jorik",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
	"Willa", "Yara", "Zara", "Ava", "Birgit", "Cora", "Dagny",
	"Eira", "Fern", "Gwen", "Hilde", "Inga", "Johanna", "Katla",
}

var lastNames = []string{
	"Voss", "Thornwood", "Blackwood", "Ashford", "Ironhand", "Dunmore",
	"Greenvale", "Stormcrow", "Frostborn", "Hearthstone", "Millward",
	"Copperfield", "Ravenmoor", "Silverdale", "Wolfsbane", "Stoneheart",
	"Deepwell", "Brightwater", "Oakenshield", "Redforge", "Windholm",
	"Marshwood", "Goldhaven", "Nightingale", "Riverstone", "Steelworth",
	"Embercroft", "Holloway", "Dawnridge", "Farrow", "Wyatt", "Thatcher",
	"Briar", "Caldwell", "Frost", "Harper", "Mercer", "Ward", "Cross",
}
