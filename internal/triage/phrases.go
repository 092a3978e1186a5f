package triage

// DefaultPhrases is the built-in corpus for the TF-IDF backend.
var DefaultPhrases = map[Category][]string{
	CategoryUnconscious: {
		"person fainted unconscious",
		"someone passed out collapsed",
		"unresponsive not waking up",
		"fell down not moving",
		"person sleeping won't wake up",
	},
	CategorySeizure: {
		"person having seizure convulsing",
		"shaking uncontrollably epileptic",
		"body jerking movements",
		"convulsions muscle spasms",
		"having a fit on the floor",
	},
	CategoryBleeding: {
		"heavy bleeding blood wound",
		"cut injury profuse bleeding",
		"blood loss deep cut",
		"wound bleeding heavily",
		"bleeding will not stop",
	},
	CategoryBreathingDifficulty: {
		"can't breathe short of breath",
		"difficulty breathing gasping for air",
		"asthma attack wheezing",
		"choking struggling to breathe",
		"breathing fast lips turning blue",
	},
	CategoryHeadache: {
		"severe headache head pain",
		"pounding migraine",
		"worst headache of my life",
		"head hurts dizzy and nauseous",
	},
	CategoryChestPain: {
		"chest pain pressure",
		"tight chest pain spreading to arm",
		"heart attack symptoms",
		"crushing pain in chest sweating",
		"chest hurts jaw pain",
	},
	CategoryStroke: {
		"face drooping one side",
		"arm weakness numb on one side",
		"slurred speech confused",
		"sudden stroke symptoms",
		"can't speak properly face droop",
	},
	CategoryBurns: {
		"burned skin from fire",
		"scald from boiling water",
		"burn blisters on hand",
		"touched hot stove burn",
		"chemical burn on skin",
	},
	CategoryAllergicReaction: {
		"allergic reaction swelling",
		"face and throat swelling hives",
		"anaphylaxis bee sting",
		"peanut allergy reaction",
		"rash itching after eating",
	},
	CategoryPoisoning: {
		"swallowed poison",
		"drank bleach chemicals",
		"took too many pills overdose",
		"child ate cleaning product",
		"ate poisonous mushrooms vomiting",
	},
}
