package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

const (
	manualNotes           = "manual"
	defaultSubjectSetting = "default_subject"
)

var (
	addHours      float64
	addDate       string
	addNotes      string
	addSetDefault bool
)

var addCmd = &cobra.Command{
	Use:   "add [subject]",
	Short: "Add a study record by hand",
	Long: `Add a study record by hand. Without a subject the default subject is
used (set one with --default).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().Float64Var(&addHours, "hours", 0, "Hours studied, e.g. 1.5 (required)")
	addCmd.Flags().StringVar(&addDate, "date", "", "Date studied (YYYY-MM-DD); defaults to today")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Optional notes")
	addCmd.Flags().BoolVar(&addSetDefault, "default", false, "Remember the subject as the default")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}

	subject, err := subjectArg(cmd, args)
	if err != nil {
		return err
	}

	date := addDate
	if date == "" {
		date = timecalc.DateKey(app.clock.Now())
	}
	notes := addNotes
	if notes == "" {
		notes = manualNotes
	}

	rec, err := app.records.Add(ctx, sess, model.StudyRecord{
		Date:    date,
		Subject: subject,
		Hours:   addHours,
		Notes:   notes,
	})
	if err != nil {
		return err
	}

	if addSetDefault {
		if err := app.records.SetSetting(ctx, sess, defaultSubjectSetting, rec.Subject); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s of %s on %s.\n",
		timecalc.FormatHours(rec.Hours), rec.Subject, rec.Date)
	return nil
}

// subjectArg returns the subject argument or the user's default subject.
func subjectArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	sess, err := app.session(cmd.Context())
	if err != nil {
		return "", err
	}
	subject, err := app.records.Setting(cmd.Context(), sess, defaultSubjectSetting)
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required (no default subject set)", apperrors.ErrInvalidInput)
	}
	return subject, nil
}
