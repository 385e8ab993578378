package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/campusworks/examport/internal/api"
	"github.com/campusworks/examport/internal/auth"
	"github.com/campusworks/examport/internal/config"
	"github.com/campusworks/examport/internal/logger"
	"github.com/campusworks/examport/internal/repository"
	"github.com/campusworks/examport/internal/validator"
)

// app bundles the shared dependencies every command needs.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *auth.Store
	students *repository.StudentRepository
	admins   *repository.AdminRepository
	stdin    *bufio.Reader
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{stdin: bufio.NewReader(os.Stdin)}

	root := &cobra.Command{
		Use:   "examport",
		Short: "Terminal client for the Examport exam platform",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.log = logger.Setup(a.cfg.LogLevel, a.cfg.LogFormat)
			validator.Setup()

			a.store = auth.NewStore()
			client := api.New(a.cfg.APIBaseURL, a.cfg.HTTPTimeout, a.store, a.log)
			a.students = repository.NewStudentRepository(client)
			a.admins = repository.NewAdminRepository(client)
		},
	}

	root.AddCommand(studentCmd(a))
	root.AddCommand(adminCmd(a))
	return root
}

// promptLine reads one trimmed line from stdin after printing the label.
func (a *app) promptLine(label string) string {
	fmt.Print(label)
	line, _ := a.stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads a password without echoing it.
func (a *app) promptPassword(label string) string {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// printFieldErrors renders client-side validation failures.
func printFieldErrors(fields map[string]string) {
	fmt.Println("Please fix the following:")
	for field, msg := range fields {
		fmt.Printf("  - %s: %s\n", field, msg)
	}
}

func formatClock(seconds int) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), seconds%60)
}
