package extraction

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

func level(name string) Field { return enum(name, "medium", "high", "medium", "low") }

var optimizeSchema = Schema{Fields: []Field{
	required(score("ats_score", 0, 100)),
	object("score_breakdown",
		score("keyword_optimization", 0, 100),
		score("formatting", 0, 100),
		score("structure", 0, 100),
		score("completeness", 0, 100),
		score("relevance", 0, 100),
	),
	strList("missing_keywords", 30),
	objectList("recommended_keywords", 20,
		required(str("keyword")), str("category"), level("priority"), str("reason"), str("context"),
	),
	strList("formatting_issues", 15),
	objectList("improvement_suggestions", 15,
		required(str("suggestion")), str("category"), level("impact"), withDefault(score("priority", 1, 5), 3),
	),
	strList("strengths", 10),
	objectList("section_recommendations", 10,
		required(str("section")), str("recommendation"), level("priority"),
	),
	strCap("overall_feedback", 2000),
}}

var optimizeJSON = ReflectSchema("ats_report", ATSReport{})

func optimizeProfile() *Profile {
	return &Profile{
		Task:        domain.TaskResumeOptimize,
		System:      "You are an expert resume reviewer and ATS specialist. Provide actionable, specific feedback to improve resume quality and ATS compatibility. Always respond with valid JSON only.",
		MaxTokens:   1500,
		Temperature: 0.4,
		Schema:      optimizeSchema,
		JSON:        optimizeJSON,
		Budgets:     map[string]int{"resume": 3000, "job": 800},
		Validate: func(req domain.ExtractionRequest) error {
			if strings.TrimSpace(req.Text) == "" {
				return &domain.CallerContractError{Field: "resume_text", Reason: "candidate has no resume text"}
			}
			return nil
		},
		Sources: func(req domain.ExtractionRequest) []Source {
			return []Source{
				{Name: "resume", Text: req.Text},
				{Name: "job", Text: req.JobDescription},
			}
		},
		Render: renderOptimize,
		Heuristic: func(req domain.ExtractionRequest) (any, error) {
			return auditResume(req.Text), nil
		},
	}
}

func renderOptimize(req domain.ExtractionRequest, in map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", candidateName(req))
	if t := strings.TrimSpace(req.JobTitle); t != "" {
		fmt.Fprintf(&b, "Target Position: %s\n", t)
	}
	if in["job"] != "" {
		fmt.Fprintf(&b, "\nTarget Job Description:\n%s\n", in["job"])
	}
	fmt.Fprintf(&b, "\nResume Text:\n%s\n", in["resume"])
	b.WriteString(`
Analyze this resume for ATS (applicant tracking system) compatibility. Return ONLY a JSON object with keys:
- ats_score: integer 0-100
- score_breakdown: {keyword_optimization, formatting, structure, completeness, relevance}, integers 0-100
- missing_keywords: keywords worth adding, based on the job description when one is given
- recommended_keywords: list of {keyword, category, priority (high|medium|low), reason, context}
- formatting_issues: problems that might confuse ATS parsers
- improvement_suggestions: list of {category, suggestion, impact (high|medium|low), priority 1-5}
- strengths: what is already good
- section_recommendations: list of {section, recommendation, priority (high|medium|low)}
- overall_feedback: brief summary`)
	return b.String()
}

// auditResume scores section presence and common technology keywords.
func auditResume(text string) ATSReport {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	hasSummary := containsAny(lower, "summary", "objective", "profile")
	hasSkills := strings.Contains(lower, "skill")
	hasExperience := containsAny(lower, "experience", "employment", "work history")
	hasEducation := strings.Contains(lower, "education")
	hasContact := containsAny(lower, "email", "@", "phone", "linkedin")

	tech := countPresent(lower, techKeywords)
	soft := countPresent(lower, softSkills)

	base := 50
	for _, bonus := range []struct {
		ok     bool
		points int
	}{{hasContact, 10}, {hasSummary, 5}, {hasSkills, 10}, {hasExperience, 10}, {hasEducation, 5}} {
		if bonus.ok {
			base += bonus.points
		}
	}
	base += min(tech*2, 10) + min(soft, 10)
	ats := min(base, 95)

	var missingSections []string
	if !hasSummary {
		missingSections = append(missingSections, "Professional summary or objective")
	}
	if !hasSkills {
		missingSections = append(missingSections, "Dedicated skills section")
	}

	r := ATSReport{
		ATSScore: ats,
		ScoreBreakdown: ScoreBreakdown{
			KeywordOptimization: min(tech*10, 80),
			Formatting:          70,
			Structure:           pick(hasExperience, 75, 50),
			Completeness:        pick(hasContact, 80, 60),
			Relevance:           65,
		},
		MissingKeywords:     []string{},
		RecommendedKeywords: []KeywordRecommendation{},
		FormattingIssues: []string{
			"Ensure consistent formatting throughout",
			"Use standard section headers",
			"Keep formatting simple for ATS compatibility",
		},
		OverallFeedback: fmt.Sprintf("Resume has a baseline ATS score of %d/100. Focus on adding missing sections and relevant keywords to improve compatibility with applicant tracking systems.", ats),
	}
	for i, kw := range techKeywords[:5] {
		if strings.Contains(lower, kw) {
			continue
		}
		r.MissingKeywords = append(r.MissingKeywords, kw)
		if i < 3 {
			r.RecommendedKeywords = append(r.RecommendedKeywords, KeywordRecommendation{
				Keyword: kw, Category: "Technical Skill", Priority: "medium", Reason: "Common industry requirement",
			})
		}
	}
	for _, s := range missingSections {
		r.ImprovementSuggestions = append(r.ImprovementSuggestions, ImprovementSuggestion{
			Category: "Structure", Suggestion: s, Impact: "high", Priority: 1,
		})
		r.SectionRecommendations = append(r.SectionRecommendations, SectionRecommendation{
			Section: s, Recommendation: fmt.Sprintf("Add %s section to improve ATS compatibility", s), Priority: "high",
		})
	}
	r.ImprovementSuggestions = append(r.ImprovementSuggestions, ImprovementSuggestion{
		Category: "Content", Suggestion: "Add quantifiable achievements to experience", Impact: "medium", Priority: 2,
	})
	if len(missingSections) == 0 {
		r.SectionRecommendations = []SectionRecommendation{
			{Section: "Experience", Recommendation: "Consider adding measurable achievements", Priority: "medium"},
			{Section: "Contact", Recommendation: "Update contact information", Priority: "low"},
		}
	}
	if tech > 0 {
		r.Strengths = []string{fmt.Sprintf("Resume length is appropriate (%d words)", words), "Contains relevant keywords"}
	} else {
		r.Strengths = []string{"Resume structure detected"}
	}
	return r
}

func containsAny(lower string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
