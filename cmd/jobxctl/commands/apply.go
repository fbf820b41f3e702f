package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/jobx/internal/applyform"
	"github.com/justsurfingit/jobx/internal/resume"
)

var (
	applyAPI         string
	applyToken       string
	applyJobID       uint
	applyResume      string
	applyCoverLetter string
)

// ApplyCmd submits an application as the token's owner. It runs the same
// local checks as the web form before anything is uploaded.
var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit an application through the API",
	RunE:  runApply,
}

func init() {
	ApplyCmd.Flags().StringVar(&applyAPI, "api", "http://localhost:8080", "JobX API base URL")
	ApplyCmd.Flags().StringVar(&applyToken, "token", os.Getenv("JOBX_TOKEN"), "bearer token of the applicant")
	ApplyCmd.Flags().UintVar(&applyJobID, "job-id", 0, "job to apply to")
	ApplyCmd.Flags().StringVar(&applyResume, "resume", "", "resume file (pdf, doc or docx)")
	ApplyCmd.Flags().StringVar(&applyCoverLetter, "cover-letter", "", "cover letter text, or @file to read it from a file")
	_ = ApplyCmd.MarkFlagRequired("job-id")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	session, err := applyform.NewSession(ctx, applyform.NewClient(applyAPI, applyToken), resume.DefaultMaxBytes)
	if err != nil {
		return err
	}

	form := applyform.Form{JobID: applyJobID, CoverLetter: applyCoverLetter}
	if len(applyCoverLetter) > 1 && applyCoverLetter[0] == '@' {
		raw, err := os.ReadFile(applyCoverLetter[1:])
		if err != nil {
			return err
		}
		form.CoverLetter = string(raw)
	}
	// an already-applied job needs no resume, so only read it when given
	if applyResume != "" {
		raw, err := os.ReadFile(applyResume)
		if err != nil {
			return err
		}
		form.ResumeName = filepath.Base(applyResume)
		form.Resume = raw
	}

	res, err := session.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", res.Outcome, res.Message)
	if res.Application != nil {
		fmt.Fprintf(out, "application %d, status %s\n", res.Application.ID, res.Application.Status)
	}
	return nil
}
