package extraction

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// RoundSeparator joins the notes of several interview rounds into one prompt source.
const RoundSeparator = "\n\n=== Interview Round Separator ===\n\n"

const minNotesChars = 10

var (
	positiveSignals = []string{
		"excellent", "great", "strong", "impressive", "skilled",
		"knowledgeable", "experienced", "professional", "confident",
		"good communication", "team player", "problem solver",
	}
	negativeSignals = []string{
		"weak", "lacking", "inexperienced", "poor", "struggled",
		"unclear", "unprepared", "not suitable", "concerns", "red flag",
	}
)

func rating(name string) Field { return withDefault(score(name, 1, 5), 3) }

var feedbackSchema = Schema{Fields: []Field{
	strList("strengths", 10),
	strList("weaknesses", 10),
	required(enum("recommendation", "maybe", "hire", "maybe", "no-hire")),
	score("confidence_score", 0, 100),
	strCap("reasoning", 2000),
	strList("next_steps", 10),
	strCap("overall_assessment", 3000),
	rating("technical_skills_rating"),
	rating("communication_skills_rating"),
	rating("culture_fit_rating"),
}}

var feedbackJSON = ReflectSchema("feedback_analysis", FeedbackAnalysis{})

func feedbackProfile() *Profile {
	return &Profile{
		Task:        domain.TaskFeedbackAnalysis,
		System:      "You are an experienced hiring manager and HR professional. Analyze interview feedback objectively and provide actionable insights. Always respond with valid JSON only.",
		MaxTokens:   1000,
		Temperature: 0.3,
		Schema:      feedbackSchema,
		JSON:        feedbackJSON,
		Budgets:     map[string]int{"notes": 2000, "job": 500, "resume": 500},
		Validate: func(req domain.ExtractionRequest) error {
			if len(req.InterviewNotes) == 0 {
				return &domain.CallerContractError{Field: "interview_notes", Reason: "no interview notes to analyze"}
			}
			if utf8.RuneCountInString(strings.TrimSpace(strings.Join(req.InterviewNotes, " "))) < minNotesChars {
				return &domain.CallerContractError{Field: "interview_notes", Reason: fmt.Sprintf("must be at least %d characters", minNotesChars)}
			}
			return nil
		},
		Sources: func(req domain.ExtractionRequest) []Source {
			return []Source{
				{Name: "notes", Text: strings.Join(req.InterviewNotes, RoundSeparator)},
				{Name: "job", Text: req.JobDescription},
				{Name: "resume", Text: req.Text},
			}
		},
		Render: renderFeedback,
		Tune: func(req domain.ExtractionRequest, c *Call) {
			if len(req.InterviewNotes) > 1 {
				c.MaxTokens = 1200
			}
		},
		Heuristic: func(req domain.ExtractionRequest) (any, error) {
			return analyzeNotes(req.InterviewNotes[len(req.InterviewNotes)-1], candidateName(req), jobTitle(req)), nil
		},
		Finalize: func(req domain.ExtractionRequest, fields map[string]any) map[string]any {
			if len(req.InterviewNotes) > 1 {
				fields["interview_rounds_analyzed"] = len(req.InterviewNotes)
			}
			return fields
		},
	}
}

func jobTitle(req domain.ExtractionRequest) string {
	if t := strings.TrimSpace(req.JobTitle); t != "" {
		return t
	}
	return "Position"
}

func candidateName(req domain.ExtractionRequest) string {
	if n := strings.TrimSpace(req.CandidateName); n != "" {
		return n
	}
	return "the candidate"
}

func renderFeedback(req domain.ExtractionRequest, in map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Title: %s\nCandidate: %s\n", jobTitle(req), candidateName(req))
	if in["job"] != "" {
		fmt.Fprintf(&b, "\nJob Requirements:\n%s\n", in["job"])
	}
	if in["resume"] != "" {
		fmt.Fprintf(&b, "\nCandidate Background:\n%s\n", in["resume"])
	}
	if n := len(req.InterviewNotes); n > 1 {
		fmt.Fprintf(&b, "\nCombined feedback from %d interview rounds:\n%s\n", n, in["notes"])
		b.WriteString(`
Provide a consolidated analysis across all rounds: consistent strengths, recurring
concerns, how the candidate evolved between rounds and an overall recommendation.
`)
	} else {
		fmt.Fprintf(&b, "\nInterview Notes/Feedback:\n%s\n", in["notes"])
	}
	b.WriteString(`
Return ONLY a JSON object with keys:
- strengths, weaknesses, next_steps: lists of short strings
- recommendation: one of hire, maybe, no-hire
- confidence_score: integer 0-100
- reasoning: brief explanation of the recommendation
- overall_assessment: one paragraph summary of the candidate
- technical_skills_rating, communication_skills_rating, culture_fit_rating: integers 1-5`)
	return b.String()
}

// analyzeNotes counts positive and negative signals in one round of notes.
func analyzeNotes(notes, name, title string) FeedbackAnalysis {
	lower := strings.ToLower(notes)
	pos := countPresent(lower, positiveSignals)
	neg := countPresent(lower, negativeSignals)

	out := FeedbackAnalysis{
		Recommendation:            "maybe",
		ConfidenceScore:           60,
		TechnicalSkillsRating:     3,
		CommunicationSkillsRating: 3,
		CultureFitRating:          3,
	}
	switch {
	case pos > neg+2:
		out.Recommendation = "hire"
		out.ConfidenceScore = min(75+pos*5, 95)
	case neg > pos+2:
		out.Recommendation = "no-hire"
		out.ConfidenceScore = min(70+neg*5, 90)
	}

	if pos > 0 {
		out.Strengths = []string{"Positive indicators found in interview feedback", "Candidate showed engagement during interview"}
	} else {
		out.Strengths = []string{"Limited positive feedback available"}
	}
	if neg > 0 {
		out.Weaknesses = []string{"Some concerns noted in feedback", "Further evaluation may be needed"}
	} else {
		out.Weaknesses = []string{"No major concerns identified"}
	}

	next := "Consider second interview"
	switch out.Recommendation {
	case "hire":
		next = "Proceed with hiring process"
	case "no-hire":
		next = "Send rejection notice"
	}
	out.NextSteps = []string{"Review detailed interview notes", next}
	out.Reasoning = fmt.Sprintf("Based on keyword analysis of interview notes. Found %d positive and %d negative indicators.", pos, neg)
	out.OverallAssessment = fmt.Sprintf("Analysis based on available interview notes for %s applying for %s. AI-powered analysis unavailable.", name, title)
	return out
}
