package domain

// TaskKind identifies an extraction profile.
type TaskKind string

const (
	TaskResumeParse      TaskKind = "resume_parse"
	TaskRanking          TaskKind = "ranking"
	TaskQuestionGen      TaskKind = "question_gen"
	TaskFeedbackAnalysis TaskKind = "feedback_analysis"
	TaskResumeOptimize   TaskKind = "resume_optimize"
)

// TaskKinds lists every supported task in a stable order.
func TaskKinds() []TaskKind {
	return []TaskKind{TaskResumeParse, TaskRanking, TaskQuestionGen, TaskFeedbackAnalysis, TaskResumeOptimize}
}

// Valid reports whether k is a known task kind.
func (k TaskKind) Valid() bool {
	for _, t := range TaskKinds() {
		if t == k {
			return true
		}
	}
	return false
}

// SourceTier records which fallback tier produced a result.
type SourceTier string

const (
	TierAI        SourceTier = "ai"
	TierHeuristic SourceTier = "heuristic"
	TierEmpty     SourceTier = "empty"
)

// ExperienceLevel buckets a candidate's seniority for question generation.
type ExperienceLevel string

const (
	LevelJunior ExperienceLevel = "junior"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

// ParseExperienceLevel returns the level named by s, or false.
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch ExperienceLevel(s) {
	case LevelJunior, LevelMid, LevelSenior:
		return ExperienceLevel(s), true
	}
	return "", false
}

// QuestionOptions tunes interview question generation.
type QuestionOptions struct {
	Count           int
	Difficulty      string
	Types           []string
	ExperienceLevel ExperienceLevel
}

// ExtractionRequest is the transient input of one pipeline run.
type ExtractionRequest struct {
	Task       TaskKind
	ResourceID string

	// Text is the primary source: the resume for resume_parse, ranking, question_gen and resume_optimize.
	Text string

	JobTitle         string
	JobDescription   string
	CandidateName    string
	CandidateProfile map[string]any

	// InterviewNotes holds one entry per interview round for feedback_analysis.
	InterviewNotes []string

	Questions QuestionOptions
}

// ExtractionResult is a normalized, schema-conformant pipeline output.
// Fields only ever holds business data; Tier and Provider are diagnostics.
type ExtractionResult struct {
	Task     TaskKind
	Fields   map[string]any
	Tier     SourceTier
	Provider string
}
