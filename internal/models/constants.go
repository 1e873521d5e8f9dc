package models

// Query kinds accepted by the orchestrator.
const (
	KindQuestion   = "question"
	KindStudyGuide = "study-guide"
)

// Learning styles that select an extra instruction block. Any other value,
// including "Balanced", gets no style-specific steering.
const (
	StyleVisual      = "Visual"
	StyleAuditory    = "Auditory"
	StyleReadWrite   = "Read/Write"
	StyleKinesthetic = "Kinesthetic"
	StyleBalanced    = "Balanced"
)

// Complexity levels, informational only: the value is interpolated into the
// prompt verbatim rather than switched on.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

// ContextSeparator joins retrieved chunks into the prompt context.
const ContextSeparator = "\n\n"
