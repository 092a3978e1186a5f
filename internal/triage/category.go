package triage

// Category is an emergency type reported by the classifier.
type Category string

const (
	CategoryUnconscious         Category = "unconscious"
	CategorySeizure             Category = "seizure"
	CategoryBleeding            Category = "bleeding"
	CategoryBreathingDifficulty Category = "breathing_difficulty"
	CategoryHeadache            Category = "headache"
	CategoryChestPain           Category = "chest_pain"
	CategoryStroke              Category = "stroke"
	CategoryBurns               Category = "burns"
	CategoryAllergicReaction    Category = "allergic_reaction"
	CategoryPoisoning           Category = "poisoning"

	// CategoryUnknown is reported when no category clears the confidence threshold.
	CategoryUnknown Category = "unknown"
)

// Remedy is the scripted first-aid guidance attached to a category.
type Remedy struct {
	Steps    []string `json:"steps"`
	Warnings []string `json:"warnings"`
	Call911  string   `json:"call_911"`
}

var categoryOrder = []Category{
	CategoryUnconscious,
	CategorySeizure,
	CategoryBleeding,
	CategoryBreathingDifficulty,
	CategoryHeadache,
	CategoryChestPain,
	CategoryStroke,
	CategoryBurns,
	CategoryAllergicReaction,
	CategoryPoisoning,
}

var remedies = map[Category]Remedy{
	CategoryUnconscious: {
		Steps:    []string{"Check responsiveness", "Call 911", "Check breathing", "Place in recovery position"},
		Warnings: []string{"Don't give food or drink"},
		Call911:  "Always call 911 for unconscious cases",
	},
	CategorySeizure: {
		Steps:    []string{"Stay Calm", "Clear the area", "Cushion head", "Time seizure"},
		Warnings: []string{"Do not restrain", "Do not put anything in mouth"},
		Call911:  "Call 911 if seizure >5 mins or injured",
	},
	CategoryBleeding: {
		Steps:    []string{"Apply pressure", "Elevate wound", "Call 911"},
		Warnings: []string{"Do not remove embedded objects"},
		Call911:  "Call 911 for heavy bleeding",
	},
	CategoryBreathingDifficulty: {
		Steps: []string{
			"Help person sit upright",
			"Loosen tight clothing",
			"Assist with inhaler if available",
			"Call 911 if symptoms worsen",
		},
		Warnings: []string{"Don’t let them lie down", "Avoid crowding"},
		Call911:  "Call 911 if breathing does not improve quickly",
	},
	CategoryHeadache: {
		Steps:    []string{"Encourage hydration", "Dim the lights", "Apply cold compress"},
		Warnings: []string{"Seek help if headache is sudden or severe"},
		Call911:  "Call 911 if headache is accompanied by vision loss or confusion",
	},
	CategoryChestPain: {
		Steps:    []string{"Have the person sit down", "Loosen tight clothing", "Keep them calm"},
		Warnings: []string{"Do not allow physical activity"},
		Call911:  "Call 911 immediately for chest pain",
	},
	CategoryStroke: {
		Steps:    []string{"Use FAST test (Face, Arms, Speech, Time)", "Keep the person still", "Note symptom start time"},
		Warnings: []string{"Do not give food or drink"},
		Call911:  "Call 911 immediately for stroke symptoms",
	},
	CategoryBurns: {
		Steps:    []string{"Cool burn with water", "Cover with sterile cloth", "Avoid popping blisters"},
		Warnings: []string{"Do not apply creams or oils"},
		Call911:  "Call 911 for large or severe burns",
	},
	CategoryAllergicReaction: {
		Steps:    []string{"Use epinephrine if available", "Call 911", "Loosen tight clothing"},
		Warnings: []string{"Watch for breathing difficulty"},
		Call911:  "Call 911 for severe allergic reactions",
	},
	CategoryPoisoning: {
		Steps:    []string{"Call poison control center", "Do not induce vomiting", "Keep sample of substance"},
		Warnings: []string{"Do not give anything to eat or drink unless instructed"},
		Call911:  "Call 911 if person is unconscious or having trouble breathing",
	},
}

// Categories returns the known categories in a stable order. Unknown is not included.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory maps a raw label to a known category.
func ParseCategory(label string) (Category, bool) {
	c := Category(label)
	if _, ok := remedies[c]; ok {
		return c, true
	}
	return CategoryUnknown, false
}

// RemedyFor returns a copy of the remedy for c. The second value is false for
// CategoryUnknown and anything outside the known set.
func RemedyFor(c Category) (Remedy, bool) {
	r, ok := remedies[c]
	if !ok {
		return Remedy{}, false
	}
	return Remedy{
		Steps:    append([]string(nil), r.Steps...),
		Warnings: append([]string(nil), r.Warnings...),
		Call911:  r.Call911,
	}, true
}
