// Package tutor implements the phase policy of the active-learning tutor: it
// picks the system prompt for the next completion and moves the learner
// through the tutoring phases.
package tutor

// Phase is the current stage of a tutoring session.
type Phase string

const (
	PhaseInitial    Phase = "initial"
	PhaseDiagnostic Phase = "diagnostic"
	PhaseTeaching   Phase = "teaching"
	PhaseAssessment Phase = "assessment"
)

// KnowledgeLevel is the learner's assessed proficiency.
type KnowledgeLevel string

const (
	Beginner     KnowledgeLevel = "beginner"
	Intermediate KnowledgeLevel = "intermediate"
	Advanced     KnowledgeLevel = "advanced"
)

// LearningState is what the tutor knows about the learner. Nil fields have
// not been established yet.
type LearningState struct {
	Topic          *string         `json:"topic"`
	Phase          Phase           `json:"current_phase"`
	KnowledgeLevel *KnowledgeLevel `json:"knowledge_level"`
	LearningStyle  *string         `json:"learning_style"`
}

// NewLearningState returns the state of a session that has not started.
func NewLearningState() LearningState {
	return LearningState{Phase: PhaseInitial}
}

// Clone returns a deep copy, so callers can hold on to a state without
// sharing its optional fields.
func (s LearningState) Clone() LearningState {
	out := LearningState{Phase: s.Phase}
	if s.Topic != nil {
		topic := *s.Topic
		out.Topic = &topic
	}
	if s.KnowledgeLevel != nil {
		level := *s.KnowledgeLevel
		out.KnowledgeLevel = &level
	}
	if s.LearningStyle != nil {
		style := *s.LearningStyle
		out.LearningStyle = &style
	}
	return out
}
