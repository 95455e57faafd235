package main

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/internal/extraction"
)

func newParseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <resume>",
		Short: "Parse a resume into structured fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := c.ex.Extract(cmd.Context(), domain.ExtractionRequest{Task: domain.TaskResumeParse, Text: text})
			if err != nil {
				return err
			}
			return c.emit(res)
		},
	}
}

func newRankCmd(c *cli) *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "rank --job <job> <resume>",
		Short: "Score a resume against a job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title, desc, err := readJob(ctx, jobPath)
			if err != nil {
				return err
			}
			text, err := readDocument(ctx, args[0])
			if err != nil {
				return err
			}
			profile, err := c.parseResume(ctx, text)
			if err != nil {
				return err
			}
			res, err := c.ex.Extract(ctx, domain.ExtractionRequest{
				Task:             domain.TaskRanking,
				Text:             text,
				JobTitle:         title,
				JobDescription:   desc,
				CandidateProfile: profile,
			})
			if err != nil {
				return err
			}
			return c.emit(res)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "job description file")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newQuestionsCmd(c *cli) *cobra.Command {
	var (
		jobPath    string
		count      int
		difficulty string
		types      []string
	)
	cmd := &cobra.Command{
		Use:   "questions <resume>",
		Short: "Generate interview questions for a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := readDocument(ctx, args[0])
			if err != nil {
				return err
			}
			req := domain.ExtractionRequest{
				Task:      domain.TaskQuestionGen,
				Text:      text,
				Questions: domain.QuestionOptions{Count: count, Difficulty: difficulty, Types: types},
			}
			if jobPath != "" {
				if req.JobTitle, req.JobDescription, err = readJob(ctx, jobPath); err != nil {
					return err
				}
			}
			if req.CandidateProfile, err = c.parseResume(ctx, text); err != nil {
				return err
			}
			if difficulty == "" {
				switch years := req.CandidateProfile["years_of_experience"].(type) {
				case int:
					req.Questions.ExperienceLevel = extraction.LevelForYears(float64(years))
				case float64:
					req.Questions.ExperienceLevel = extraction.LevelForYears(years)
				}
			}
			res, err := c.ex.Extract(ctx, req)
			if err != nil {
				return err
			}
			return c.emit(res)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "optional job description file")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions (1-20, default 10)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().StringSliceVar(&types, "types", nil, "question types: technical, behavioral, situational, cultural")
	return cmd
}

func newFeedbackCmd(c *cli) *cobra.Command {
	var (
		notePaths  []string
		resumePath string
		jobPath    string
	)
	cmd := &cobra.Command{
		Use:   "feedback --notes <file> [--notes <file>...]",
		Short: "Analyse interview notes; several --notes files are treated as rounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := domain.ExtractionRequest{Task: domain.TaskFeedbackAnalysis}
			for _, p := range notePaths {
				notes, err := readDocument(ctx, p)
				if err != nil {
					return err
				}
				req.InterviewNotes = append(req.InterviewNotes, notes)
			}
			var err error
			if resumePath != "" {
				if req.Text, err = readDocument(ctx, resumePath); err != nil {
					return err
				}
			}
			if jobPath != "" {
				if req.JobTitle, req.JobDescription, err = readJob(ctx, jobPath); err != nil {
					return err
				}
			}
			res, err := c.ex.Extract(ctx, req)
			if err != nil {
				return err
			}
			return c.emit(res)
		},
	}
	cmd.Flags().StringArrayVar(&notePaths, "notes", nil, "interview notes file, repeatable")
	cmd.Flags().StringVar(&resumePath, "resume", "", "optional resume file")
	cmd.Flags().StringVar(&jobPath, "job", "", "optional job description file")
	_ = cmd.MarkFlagRequired("notes")
	return cmd
}

func newOptimizeCmd(c *cli) *cobra.Command {
	var jobPath string
	cmd := &cobra.Command{
		Use:   "optimize <resume>",
		Short: "Audit a resume for ATS compatibility, optionally against a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := readDocument(ctx, args[0])
			if err != nil {
				return err
			}
			req := domain.ExtractionRequest{Task: domain.TaskResumeOptimize, Text: text}
			if jobPath != "" {
				if req.JobTitle, req.JobDescription, err = readJob(ctx, jobPath); err != nil {
					return err
				}
			}
			res, err := c.ex.Extract(ctx, req)
			if err != nil {
				return err
			}
			return c.emit(res)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "optional job description file")
	return cmd
}
