package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusworks/examport/internal/examflow"
	"github.com/campusworks/examport/internal/model"
)

func studentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "student",
		Short: "Student portal: log in, view assigned exams, take an exam",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudentPortal(a, cmd.Context())
		},
	}
}

func runStudentPortal(a *app, ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	student, ok := studentLogin(a, ctx)
	if !ok {
		return nil
	}

	for {
		assignments, ok := fetchAssignments(a, ctx, student.ID)
		if !ok {
			return nil
		}
		if len(assignments) == 0 {
			fmt.Println("No exams are currently assigned to you.")
			return nil
		}

		fmt.Println("\nAssigned exams:")
		for i, ex := range assignments {
			fmt.Printf("  %d. %s (%s) - %d min, %s\n", i+1, ex.CourseName, ex.CourseCode, ex.Duration, ex.ExamType)
		}

		choice := a.promptLine("Select an exam number to start, or q to quit: ")
		if strings.EqualFold(choice, "q") {
			a.store.Clear()
			return nil
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(assignments) {
			fmt.Println("Invalid selection.")
			continue
		}

		takeExam(a, ctx, assignments[n-1], student.ID)
	}
}

func studentLogin(a *app, ctx context.Context) (model.Student, bool) {
	for {
		matric := a.promptLine("Matric number: ")
		password := a.promptPassword("Password: ")

		res := a.students.Login(ctx, matric, password)
		if res.IsSuccess() {
			student := res.Value()
			a.store.SetStudent(student)
			fmt.Printf("Welcome, %s.\n", student.FullName)
			return student, true
		}

		fmt.Printf("Login failed: %s\n", res.Message())
		if !strings.EqualFold(a.promptLine("Try again? (y/n): "), "y") {
			return model.Student{}, false
		}
	}
}

func fetchAssignments(a *app, ctx context.Context, studentID string) ([]model.ExamAssignment, bool) {
	for {
		res := a.students.Assignments(ctx, studentID)
		if res.IsSuccess() {
			return res.Value(), true
		}
		fmt.Printf("Could not fetch exams: %s\n", res.Message())
		if !strings.EqualFold(a.promptLine("Retry? (y/n): "), "y") {
			return nil, false
		}
	}
}

// takeExam runs one timed attempt: load questions, drive the session from
// terminal input, and surface the submit/exit confirmations.
func takeExam(a *app, ctx context.Context, assignment model.ExamAssignment, studentID string) {
	session := examflow.NewSession(ctx, a.students, a.log, assignment, studentID)
	defer session.Clear()

	for {
		snap := session.Load()
		if snap.Phase == examflow.PhaseReady {
			break
		}
		if snap.Phase == examflow.PhaseEmpty {
			fmt.Println("This exam has no questions yet. Check back later.")
			return
		}
		fmt.Printf("Could not load questions: %s\n", snap.LoadError)
		if !strings.EqualFold(a.promptLine("Retry? (y/n): "), "y") {
			return
		}
	}

	session.StartTicker()
	fmt.Printf("\nExam started: %s. You have %s. Type 'help' for commands.\n",
		assignment.CourseCode, formatClock(session.Snapshot().Remaining))

	for {
		snap := session.Snapshot()

		switch snap.SubState {
		case examflow.SubStateSubmitted:
			fmt.Println("\nYour exam has been submitted. Well done.")
			return
		case examflow.SubStateSubmitFailed:
			fmt.Printf("\nSubmission failed: %s\n", snap.SubmitError)
			if strings.EqualFold(a.promptLine("Retry submission? (y/n): "), "y") {
				session.RetrySubmit()
				awaitSubmitOutcome(session)
				continue
			}
			return
		case examflow.SubStateSubmitting:
			awaitSubmitOutcome(session)
			continue
		}

		printQuestion(session, snap)
		input := a.promptLine(fmt.Sprintf("[%s left] > ", formatClock(snap.Remaining)))

		switch {
		case input == "help":
			fmt.Println("Commands: <n> select option n · ans <text> answer open question · next/prev · goto <n> · status · submit · exit")
		case input == "next":
			session.GoToQuestion(snap.Index + 1)
		case input == "prev":
			session.GoToQuestion(snap.Index - 1)
		case strings.HasPrefix(input, "goto "):
			if n, err := strconv.Atoi(strings.TrimPrefix(input, "goto ")); err == nil {
				session.GoToQuestion(n - 1)
			}
		case input == "status":
			fmt.Printf("%d of %d questions answered, %s remaining.\n",
				snap.AnsweredCount, snap.QuestionCount, formatClock(snap.Remaining))
		case input == "submit":
			answered, total, ok := session.RequestSubmit()
			if !ok {
				continue
			}
			fmt.Printf("You have answered %d of %d questions.\n", answered, total)
			if strings.EqualFold(a.promptLine("Submit now? (y/n): "), "y") {
				session.ConfirmSubmit()
				awaitSubmitOutcome(session)
			}
		case input == "exit":
			if !session.RequestExit() {
				fmt.Println("Leaving exam.")
				return
			}
			fmt.Println("Leaving now will discard your answers.")
			if strings.EqualFold(a.promptLine("Leave anyway? (y/n): "), "y") {
				session.ConfirmExit()
				return
			}
			session.DeclineExit()
		case strings.HasPrefix(input, "ans "):
			if q, ok := session.Current(); ok {
				session.SetAnswer(q.ID, strings.TrimSpace(strings.TrimPrefix(input, "ans ")))
			}
		default:
			answerByNumber(session, input)
		}
	}
}

func printQuestion(session *examflow.Session, snap examflow.Snapshot) {
	q, ok := session.Current()
	if !ok {
		return
	}

	fmt.Printf("\nQuestion %d of %d: %s\n", snap.Index+1, snap.QuestionCount, q.Prompt)
	if q.Type() == model.QuestionTypeMultipleChoice {
		for i, opt := range q.Options {
			marker := " "
			if answer, answered := session.Answer(q.ID); answered && answer == opt {
				marker = "*"
			}
			fmt.Printf("  %s %d. %s\n", marker, i+1, opt)
		}
	} else if answer, answered := session.Answer(q.ID); answered {
		fmt.Printf("  Your answer: %s\n", answer)
	}
}

// answerByNumber treats a bare number as an option pick on an MCQ question.
func answerByNumber(session *examflow.Session, input string) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return
	}
	q, ok := session.Current()
	if !ok || q.Type() != model.QuestionTypeMultipleChoice {
		return
	}
	if n < 1 || n > len(q.Options) {
		fmt.Println("No such option.")
		return
	}
	session.SetAnswer(q.ID, q.Options[n-1])
}

// awaitSubmitOutcome blocks until the in-flight submission resolves either
// way. The session applies the result itself; this only waits for it.
func awaitSubmitOutcome(session *examflow.Session) {
	fmt.Println("Submitting...")
	for {
		snap := session.Snapshot()
		if snap.SubState != examflow.SubStateSubmitting {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
