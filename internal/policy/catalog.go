package policy

// DefaultCatalog is the built-in policy set used when configuration does not
// supply one.
func DefaultCatalog() []Policy {
	return []Policy{
		{
			ID:          "child_subsidy",
			Name:        "Child Subsidy",
			Description: "Pays families for each newborn.",
			Cost:        500,
			Effect:      Effect{FertilityRate: 0.03, Economy: -0.05},
		},
		{
			ID:          "universal_healthcare",
			Name:        "Universal Healthcare",
			Description: "Free clinics lower mortality but use more medicine.",
			Cost:        800,
			Effect:      Effect{DeathRate: -0.0005, MedicineConsumption: 0.25},
		},
		{
			ID:          "agricultural_reform",
			Name:        "Agricultural Reform",
			Description: "Crop rotation and irrigation for two years.",
			Cost:        600,
			Effect:      Effect{FoodProduction: 0.25},
			Duration:    24,
		},
		{
			ID:          "industrial_push",
			Name:        "Industrial Push",
			Description: "Workshops run double shifts; farms lose hands.",
			Cost:        700,
			Effect:      Effect{Economy: 0.3, FoodProduction: -0.1},
			Duration:    36,
		},
		{
			ID:          "family_planning",
			Name:        "Family Planning",
			Description: "Smaller families and healthier mothers.",
			Cost:        300,
			Effect:      Effect{FertilityRate: -0.02, DeathRate: -0.0002},
		},
		{
			ID:          "austerity",
			Name:        "Austerity",
			Description: "Cuts public spending for a year.",
			Effect:      Effect{Economy: 0.15, MedicineConsumption: -0.2, DeathRate: 0.0003},
			Duration:    12,
		},
	}
}
