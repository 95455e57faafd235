package extraction

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 20
)

// Question type buckets, in presentation order.
var questionTypes = []string{"technical", "behavioral", "situational", "culture_fit"}

var questionSchema = Schema{
	ListRoot: "questions",
	Fields: []Field{
		required(objectList("questions", MaxQuestionCount,
			required(str("question")),
			enum("type", "technical", questionTypes...),
			enum("difficulty", "medium", "easy", "medium", "hard"),
			str("category"),
			str("follow_up"),
		)),
	},
}

var questionJSON = ReflectSchema("question_set", QuestionSet{})

var difficultyLevel = map[string]domain.ExperienceLevel{
	"easy":   domain.LevelJunior,
	"medium": domain.LevelMid,
	"hard":   domain.LevelSenior,
}

// LevelForYears buckets years of experience: under 2 is junior, over 5 is senior.
func LevelForYears(years float64) domain.ExperienceLevel {
	switch {
	case years < 2:
		return domain.LevelJunior
	case years > 5:
		return domain.LevelSenior
	}
	return domain.LevelMid
}

// ResolveQuestionOptions fills defaults: 10 questions, medium difficulty, technical and
// behavioral types, and a level derived from difficulty when none is given.
func ResolveQuestionOptions(o domain.QuestionOptions) domain.QuestionOptions {
	if o.Count == 0 {
		o.Count = DefaultQuestionCount
	}
	if o.Difficulty == "" {
		o.Difficulty = "medium"
	}
	if len(o.Types) == 0 {
		o.Types = []string{"technical", "behavioral"}
	}
	if o.ExperienceLevel == "" {
		o.ExperienceLevel = difficultyLevel[o.Difficulty]
	}
	return o
}

func validateQuestionOptions(o domain.QuestionOptions) error {
	if o.Count < 0 || o.Count > MaxQuestionCount {
		return &domain.CallerContractError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", MaxQuestionCount)}
	}
	if _, ok := difficultyLevel[o.Difficulty]; o.Difficulty != "" && !ok {
		return &domain.CallerContractError{Field: "difficulty", Reason: "must be easy, medium or hard"}
	}
	if _, ok := domain.ParseExperienceLevel(string(o.ExperienceLevel)); o.ExperienceLevel != "" && !ok {
		return &domain.CallerContractError{Field: "experience_level", Reason: "must be junior, mid or senior"}
	}
	for _, t := range o.Types {
		if !containsFold(questionTypes, canonicalEnum(t)) {
			return &domain.CallerContractError{Field: "question_types", Reason: "unknown question type " + t}
		}
	}
	return nil
}

func questionProfile() *Profile {
	return &Profile{
		Task:        domain.TaskQuestionGen,
		System:      "You are an expert technical recruiter. You write relevant, insightful interview questions and answer with JSON only.",
		MaxTokens:   1500,
		Temperature: 0.7,
		Schema:      questionSchema,
		JSON:        questionJSON,
		Budgets:     map[string]int{"resume": 1500},
		Validate: func(req domain.ExtractionRequest) error {
			return validateQuestionOptions(req.Questions)
		},
		Sources: func(req domain.ExtractionRequest) []Source {
			return []Source{{Name: "resume", Text: req.Text}}
		},
		Render: func(req domain.ExtractionRequest, in map[string]string) string {
			o := ResolveQuestionOptions(req.Questions)
			skills := strings.Join(stringsOf(req.CandidateProfile["skills"]), ", ")
			if skills == "" {
				skills = "Not specified"
			}
			return fmt.Sprintf(`Generate %d interview questions for this candidate.

Candidate Skills: %s
Experience Level: %s
Question Types: %s
Difficulty: %s

Resume excerpt:
%s

Return a JSON object {"questions": [...]} where each question has:
- question: the question text
- type: technical, behavioral, situational or culture_fit
- difficulty: easy, medium or hard
- category: a short topic label
- follow_up: one follow-up question`,
				o.Count, skills, o.ExperienceLevel, strings.Join(o.Types, ", "), o.Difficulty, in["resume"])
		},
		Heuristic: func(req domain.ExtractionRequest) (any, error) {
			o := ResolveQuestionOptions(req.Questions)
			return QuestionSet{Questions: QuestionBank(o.ExperienceLevel, o.Count)}, nil
		},
		Finalize: func(req domain.ExtractionRequest, fields map[string]any) map[string]any {
			o := ResolveQuestionOptions(req.Questions)
			qs, _ := fields["questions"].([]map[string]any)
			if len(qs) > o.Count {
				qs = qs[:o.Count]
			}
			categorized := make(map[string][]map[string]any, len(questionTypes))
			for _, t := range questionTypes {
				categorized[t] = []map[string]any{}
			}
			for _, q := range qs {
				t, _ := q["type"].(string)
				if _, ok := categorized[t]; !ok {
					t = "technical"
				}
				categorized[t] = append(categorized[t], q)
			}
			if qs == nil {
				qs = []map[string]any{}
			}
			return map[string]any{
				"questions":        qs,
				"total_questions":  len(qs),
				"categorized":      categorized,
				"experience_level": string(o.ExperienceLevel),
			}
		},
	}
}

var questionBank = map[domain.ExperienceLevel][]Question{
	domain.LevelJunior: {
		{Question: "Tell me about a challenging project you worked on and how you approached it.", Type: "behavioral", Difficulty: "easy", Category: "Problem Solving"},
		{Question: "How do you stay updated with new technologies and best practices?", Type: "behavioral", Difficulty: "easy", Category: "Learning & Development"},
		{Question: "Describe a time when you had to debug a difficult issue. What was your approach?", Type: "technical", Difficulty: "medium", Category: "Debugging"},
		{Question: "How do you handle working on multiple tasks with tight deadlines?", Type: "behavioral", Difficulty: "easy", Category: "Time Management"},
		{Question: "What interests you most about this role and our company?", Type: "culture_fit", Difficulty: "easy", Category: "Motivation"},
	},
	domain.LevelMid: {
		{Question: "Describe your experience with design patterns. Which ones do you use most frequently?", Type: "technical", Difficulty: "medium", Category: "Architecture"},
		{Question: "Tell me about a time you had to make a technical trade-off decision.", Type: "behavioral", Difficulty: "medium", Category: "Decision Making"},
		{Question: "How do you approach code reviews? What do you look for?", Type: "technical", Difficulty: "medium", Category: "Code Quality"},
		{Question: "Describe a situation where you had to mentor a junior developer.", Type: "behavioral", Difficulty: "medium", Category: "Leadership"},
		{Question: "How do you balance technical debt with feature development?", Type: "situational", Difficulty: "medium", Category: "Project Management"},
	},
	domain.LevelSenior: {
		{Question: "How do you approach system design for high-scale applications?", Type: "technical", Difficulty: "hard", Category: "System Design"},
		{Question: "Describe a situation where you influenced the technical direction of a project.", Type: "behavioral", Difficulty: "hard", Category: "Leadership"},
		{Question: "How do you evaluate and introduce new technologies to a team?", Type: "situational", Difficulty: "hard", Category: "Technology Leadership"},
		{Question: "Tell me about a time you had to resolve a conflict between team members.", Type: "behavioral", Difficulty: "hard", Category: "Conflict Resolution"},
		{Question: "How do you ensure code quality and maintainability in a large codebase?", Type: "technical", Difficulty: "hard", Category: "Code Quality"},
	},
}

// QuestionBank returns up to count fixed questions for level. Unknown levels use mid.
func QuestionBank(level domain.ExperienceLevel, count int) []Question {
	bank, ok := questionBank[level]
	if !ok {
		bank = questionBank[domain.LevelMid]
	}
	if count > len(bank) || count <= 0 {
		count = len(bank)
	}
	out := make([]Question, count)
	copy(out, bank[:count])
	return out
}
