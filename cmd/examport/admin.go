package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusworks/examport/internal/adminflow"
	"github.com/campusworks/examport/internal/api"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin operations: create and update exams, grade, fetch reports",
	}

	var email string
	cmd.PersistentFlags().StringVar(&email, "email", "", "Admin email (password is prompted)")

	newFlow := func() *adminflow.Flow {
		return adminflow.NewFlow(a.admins, a.store, a.log)
	}

	login := func(ctx context.Context, flow *adminflow.Flow) bool {
		if email == "" {
			email = a.promptLine("Admin email: ")
		}
		password := a.promptPassword("Password: ")

		fields, res := flow.Login(ctx, email, password)
		if fields != nil {
			printFieldErrors(fields)
			return false
		}
		if res.IsError() {
			fmt.Printf("Login failed: %s\n", res.Message())
			return false
		}
		if expiry, ok := a.store.TokenExpiry(); ok {
			a.log.Debug().Time("expires", expiry).Msg("Admin token stored")
		}
		return true
	}

	cmd.AddCommand(
		adminCreateCmd(a, newFlow, login),
		adminUpdateCmd(a, newFlow, login),
		adminUngradedCmd(a, newFlow, login),
		adminGradeCmd(a, newFlow, login),
		adminReportCmd(a, newFlow, login),
		adminDownloadCmd(a, newFlow, login),
	)
	return cmd
}

type flowFactory func() *adminflow.Flow
type loginFunc func(ctx context.Context, flow *adminflow.Flow) bool

func adminCreateCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	var form adminflow.CreateExamForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an exam (uploads the student roster)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			fields, res := flow.CreateExam(ctx, form)
			if fields != nil {
				printFieldErrors(fields)
				return nil
			}
			if res.IsError() {
				fmt.Printf("Create failed: %s\n", res.Message())
				return nil
			}
			exam := res.Value()
			fmt.Printf("Exam created: %s (%s, %d questions, %d min)\n",
				exam.ExamID, exam.CourseCode, exam.QuestionCount, exam.Duration)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.CourseName, "course-name", "", "Course name")
	f.StringVar(&form.CourseCode, "course-code", "", "Course code")
	f.IntVar(&form.Duration, "duration", 0, "Exam duration in minutes")
	f.IntVar(&form.QuestionCount, "questions", 0, "Number of questions")
	f.StringVar(&form.ExamType, "type", "", "Exam type: MCQ or OE")
	f.StringVar(&form.RosterPath, "roster", "", "Path to the roster spreadsheet")
	return cmd
}

func adminUpdateCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	var form adminflow.UpdateExamForm
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace an exam's content files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			fields, res := flow.UpdateExam(ctx, form)
			if fields != nil {
				printFieldErrors(fields)
				return nil
			}
			if res.IsError() {
				fmt.Printf("Update failed: %s\n", res.Message())
				return nil
			}
			fmt.Printf("Exam %s content updated.\n", form.ExamID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.ExamID, "exam", "", "Exam ID")
	f.StringVar(&form.ExamType, "type", "", "Exam type: MCQ or OE")
	f.StringVar(&form.MCQPath, "mcq-file", "", "MCQ questions file (MCQ exams)")
	f.StringVar(&form.QuestionsPath, "questions-file", "", "Questions file (OE exams)")
	f.StringVar(&form.AnswerKeyPath, "answer-key", "", "Answer key file (OE exams)")
	return cmd
}

func adminUngradedCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ungraded",
		Short: "List exams awaiting grading",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			res := flow.Ungraded(ctx)
			if res.IsError() {
				fmt.Printf("Fetch failed: %s\n", res.Message())
				return nil
			}
			exams := res.Value()
			if len(exams) == 0 {
				fmt.Println("No exams are awaiting grading.")
				return nil
			}
			for _, ex := range exams {
				fmt.Printf("  %s  %s (%s)\n", ex.ExamID, ex.CourseName, ex.CourseCode)
			}
			return nil
		},
	}
}

func adminGradeCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	var examID string
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Trigger grading for one exam",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			fields, res := flow.Grade(ctx, examID)
			if fields != nil {
				printFieldErrors(fields)
				return nil
			}
			if res.IsError() {
				fmt.Printf("Grading failed: %s\n", res.Message())
				return nil
			}
			fmt.Printf("Grading completed: %s\n", res.Message())
			return nil
		},
	}
	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	return cmd
}

func adminReportCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	var examID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the per-exam score report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			res := flow.Report(ctx, examID)
			if res.IsError() {
				fmt.Printf("Report failed: %s\n", res.Message())
				return nil
			}
			report := res.Value()
			fmt.Printf("%s\n", report.ExamTitle)
			for _, row := range report.Students {
				fmt.Printf("  %-25s %-15s %6.1f\n", row.StudentName, row.MatricNumber, row.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&examID, "exam", "", "Exam ID")
	return cmd
}

func adminDownloadCmd(a *app, newFlow flowFactory, login loginFunc) *cobra.Command {
	var examID, out string
	var scripts bool
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the report CSV or answer scripts for an exam",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flow := newFlow()
			if !login(ctx, flow) {
				return nil
			}

			var res api.Result[string]
			if scripts {
				res = flow.DownloadScripts(ctx, examID, out)
			} else {
				res = flow.DownloadReport(ctx, examID, out)
			}
			if res.IsError() {
				fmt.Printf("Download failed: %s\n", res.Message())
				return nil
			}
			fmt.Printf("Saved to %s\n", res.Value())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&examID, "exam", "", "Exam ID")
	f.StringVar(&out, "out", "", "Destination file path")
	f.BoolVar(&scripts, "scripts", false, "Download answer scripts instead of the report")
	return cmd
}
