package constants

// Submission intake channels.
const (
	SourceFDSC   = 1 // free daily submission
	SourceRumble = 2
)

// Who produced the text stored on a transcription side record.
const (
	TranscriptionSourceDS   = 1
	TranscriptionSourceUser = 2
)

// Rumble phases on a section link.
const (
	PhasePending = "pending"
	PhaseActive  = "active"
	PhaseEnded   = "ended"
)

// Validators of a sign-up.
const (
	ValidatorUser   = "user"
	ValidatorParent = "parent"
)
