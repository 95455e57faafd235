package extraction

// Typed views of each task's output. They are reflected into JSON Schema for
// structured-output requests and conformance checks, and heuristics build them
// directly.

type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

type Experience struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location"`
	GraduationDate string `json:"graduation_date"`
	GPA            string `json:"gpa"`
	FieldOfStudy   string `json:"field_of_study"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
}

type ParsedResume struct {
	Contact        Contact      `json:"contact"`
	Summary        string       `json:"summary"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications"`
	Languages      []string     `json:"languages"`
	Projects       []Project    `json:"projects"`
}

type Ranking struct {
	Score      int      `json:"score" jsonschema:"minimum=0,maximum=100"`
	TopMatches []string `json:"top_matches" jsonschema:"maxItems=3"`
	Concerns   []string `json:"concerns" jsonschema:"maxItems=3"`
	Reason     string   `json:"reason"`
}

type Question struct {
	Question   string `json:"question"`
	Type       string `json:"type" jsonschema:"enum=technical,enum=behavioral,enum=situational,enum=culture_fit"`
	Difficulty string `json:"difficulty" jsonschema:"enum=easy,enum=medium,enum=hard"`
	Category   string `json:"category"`
	FollowUp   string `json:"follow_up"`
}

type QuestionSet struct {
	Questions []Question `json:"questions"`
}

type FeedbackAnalysis struct {
	Strengths                 []string `json:"strengths"`
	Weaknesses                []string `json:"weaknesses"`
	Recommendation            string   `json:"recommendation" jsonschema:"enum=hire,enum=maybe,enum=no-hire"`
	ConfidenceScore           int      `json:"confidence_score" jsonschema:"minimum=0,maximum=100"`
	Reasoning                 string   `json:"reasoning"`
	NextSteps                 []string `json:"next_steps"`
	OverallAssessment         string   `json:"overall_assessment"`
	TechnicalSkillsRating     int      `json:"technical_skills_rating" jsonschema:"minimum=1,maximum=5"`
	CommunicationSkillsRating int      `json:"communication_skills_rating" jsonschema:"minimum=1,maximum=5"`
	CultureFitRating          int      `json:"culture_fit_rating" jsonschema:"minimum=1,maximum=5"`
}

type ScoreBreakdown struct {
	KeywordOptimization int `json:"keyword_optimization" jsonschema:"minimum=0,maximum=100"`
	Formatting          int `json:"formatting" jsonschema:"minimum=0,maximum=100"`
	Structure           int `json:"structure" jsonschema:"minimum=0,maximum=100"`
	Completeness        int `json:"completeness" jsonschema:"minimum=0,maximum=100"`
	Relevance           int `json:"relevance" jsonschema:"minimum=0,maximum=100"`
}

type KeywordRecommendation struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Priority string `json:"priority" jsonschema:"enum=high,enum=medium,enum=low"`
	Reason   string `json:"reason"`
	Context  string `json:"context"`
}

type ImprovementSuggestion struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Impact     string `json:"impact" jsonschema:"enum=high,enum=medium,enum=low"`
	Priority   int    `json:"priority" jsonschema:"minimum=1,maximum=5"`
}

type SectionRecommendation struct {
	Section        string `json:"section"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority" jsonschema:"enum=high,enum=medium,enum=low"`
}

type ATSReport struct {
	ATSScore               int                     `json:"ats_score" jsonschema:"minimum=0,maximum=100"`
	ScoreBreakdown         ScoreBreakdown          `json:"score_breakdown"`
	MissingKeywords        []string                `json:"missing_keywords"`
	RecommendedKeywords    []KeywordRecommendation `json:"recommended_keywords"`
	FormattingIssues       []string                `json:"formatting_issues"`
	ImprovementSuggestions []ImprovementSuggestion `json:"improvement_suggestions"`
	Strengths              []string                `json:"strengths"`
	SectionRecommendations []SectionRecommendation `json:"section_recommendations"`
	OverallFeedback        string                  `json:"overall_feedback"`
}
