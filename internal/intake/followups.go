package intake

import (
	"strings"

	"github.com/symptoguide-engine/internal/domain"
)

// targetQuestionCount is how many follow-up questions a session aims for.
const targetQuestionCount = 5

// keywordQuestion ties a set of symptom keywords to the question asked when
// any selected symptom contains one of them. Groups are evaluated in order so
// generation is deterministic for a given symptom set.
type keywordQuestion struct {
	keywords []string
	question domain.FollowUpQuestion
}

var keywordQuestions = []keywordQuestion{
	{
		keywords: []string{"fever"},
		question: domain.FollowUpQuestion{
			Prompt: "Have you measured your temperature?",
			Kind:   domain.QuestionYesNo,
		},
	},
	{
		keywords: []string{"pain", "ache"},
		question: domain.FollowUpQuestion{
			Prompt: "On a scale of 1 to 10, how intense is the pain?",
			Kind:   domain.QuestionScale,
		},
	},
	{
		keywords: []string{"cough"},
		question: domain.FollowUpQuestion{
			Prompt:  "Is your cough dry or productive?",
			Kind:    domain.QuestionChoice,
			Options: []string{"dry", "wet/productive", "both"},
		},
	},
	{
		keywords: []string{"nausea", "vomit"},
		question: domain.FollowUpQuestion{
			Prompt: "Are you able to keep fluids down?",
			Kind:   domain.QuestionYesNo,
		},
	},
	{
		keywords: []string{"headache"},
		question: domain.FollowUpQuestion{
			Prompt: "Where is the headache located, and does light bother you?",
			Kind:   domain.QuestionText,
		},
	},
}

// genericPool is the fixed ordered pool used to pad the question list up to
// the target count. Iterated in order, skipping prompts already present,
// stopping at the target or when the pool runs out.
var genericPool = []domain.FollowUpQuestion{
	{Prompt: "Have you had any recent injury?", Kind: domain.QuestionYesNo},
	{Prompt: "Are you currently taking any medication?", Kind: domain.QuestionYesNo},
	{Prompt: "Do you have any known allergies?", Kind: domain.QuestionYesNo},
	{Prompt: "Have you travelled recently?", Kind: domain.QuestionYesNo},
	{Prompt: "Have you been in contact with someone who is sick?", Kind: domain.QuestionYesNo},
}

// GenerateFollowUps builds the follow-up question list for a symptom set.
// The result is deterministic: the same symptoms always produce the same
// ordered questions. Callers generate once per session; re-entry to the
// follow-up step must not regenerate.
func GenerateFollowUps(symptoms *domain.SymptomSet) []domain.FollowUpQuestion {
	var questions []domain.FollowUpQuestion

	labels := symptoms.Labels()
	for _, kq := range keywordQuestions {
		if matchesAny(labels, kq.keywords) {
			questions = append(questions, kq.question)
		}
	}

	// Pad from the generic pool: in order, skip duplicates, stop at the
	// target count or when the pool is exhausted.
	for _, generic := range genericPool {
		if len(questions) >= targetQuestionCount {
			break
		}
		if containsPrompt(questions, generic.Prompt) {
			continue
		}
		questions = append(questions, generic)
	}

	return questions
}

// matchesAny reports whether any label contains any keyword, case-insensitively.
func matchesAny(labels, keywords []string) bool {
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func containsPrompt(questions []domain.FollowUpQuestion, prompt string) bool {
	for _, q := range questions {
		if q.Prompt == prompt {
			return true
		}
	}
	return false
}
