package tutor

import (
	"fmt"
	"strings"
)

// teachingTurnThreshold is the conversation length at which the diagnostic
// phase hands over to teaching.
const teachingTurnThreshold = 4

// topicKeyword keeps the initial phase open while the learner is still talking
// about choosing a topic rather than naming one.
const topicKeyword = "topic"

const initialPrompt = `You are an intelligent, adaptive AI tutor. Your first task is to understand what the user wants to learn.
Ask them what topic they want to learn about and their learning goals or background in the topic.
Be friendly and encouraging.`

const diagnosticPrompt = `You are an intelligent, adaptive AI tutor. The user wants to learn about %s.
Ask 2-3 diagnostic questions to assess their current knowledge level.
Make the questions specific and relevant to the topic.
After each answer, provide brief feedback and adjust your next question based on their response.`

const teachingPrompt = `You are an intelligent, adaptive AI tutor teaching %s.
Follow this active learning loop:
1. Ask a concept-checking question
2. Based on the answer, provide feedback
3. Offer a clear explanation or analogy
4. Ask a follow-up question to reinforce understanding

Keep explanations concise and engaging. Use examples when possible.
Adapt your teaching style based on the user's responses.
Current knowledge level: %s`

const continuePrompt = `You are an intelligent, adaptive AI tutor. Continue the active learning process,
maintaining engagement and checking for understanding.`

// SelectPrompt returns the system prompt for the phase the learner is in.
func SelectPrompt(state LearningState) string {
	switch state.Phase {
	case PhaseInitial:
		return initialPrompt
	case PhaseDiagnostic:
		return fmt.Sprintf(diagnosticPrompt, topicOf(state))
	case PhaseTeaching:
		return fmt.Sprintf(teachingPrompt, topicOf(state), levelOf(state))
	default:
		return continuePrompt
	}
}

// Advance moves the learner forward after a successful exchange. lastUserReply
// is the text the learner just submitted and turnCount the size of the
// conversation including the reply to it. At most one transition happens per
// call and phases never move backwards.
func Advance(state LearningState, lastUserReply string, turnCount int) LearningState {
	next := state.Clone()

	switch state.Phase {
	case PhaseInitial:
		if !strings.Contains(strings.ToLower(lastUserReply), topicKeyword) {
			topic := lastUserReply
			next.Phase = PhaseDiagnostic
			next.Topic = &topic
		}
	case PhaseDiagnostic:
		if turnCount >= teachingTurnThreshold {
			// No assessment is performed yet; everyone starts as a beginner.
			level := Beginner
			next.Phase = PhaseTeaching
			next.KnowledgeLevel = &level
		}
	}

	return next
}

func topicOf(state LearningState) string {
	if state.Topic == nil {
		return "an unspecified topic"
	}
	return *state.Topic
}

func levelOf(state LearningState) string {
	if state.KnowledgeLevel == nil {
		return "unknown"
	}
	return string(*state.KnowledgeLevel)
}
