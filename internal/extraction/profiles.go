package extraction

import "github.com/fairyhunter13/ai-recruit-assistant/internal/domain"

// Profiles returns a fresh copy of every task profile. Callers may apply overrides
// to the returned values without affecting other pipelines.
func Profiles() []*Profile {
	return []*Profile{
		resumeProfile(),
		rankingProfile(),
		questionProfile(),
		feedbackProfile(),
		optimizeProfile(),
	}
}

// QuestionTemplates returns the fixed question bank for an experience level.
func QuestionTemplates(level string) (QuestionSet, bool) {
	lv, ok := domain.ParseExperienceLevel(level)
	if !ok {
		return QuestionSet{}, false
	}
	return QuestionSet{Questions: QuestionBank(lv, DefaultQuestionCount)}, true
}
