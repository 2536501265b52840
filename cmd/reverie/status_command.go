package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reverie/internal/preflight"
	"reverie/internal/transcript"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the data directory, scene store, and backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := transcript.ShouldColorize(out)

			opCtx := ctx.operationContext(cmd, "status")
			results := preflight.RunAll(opCtx, cfg)

			for _, line := range transcript.SectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := transcript.StatusOK
				if !result.Passed {
					kind = transcript.StatusError
				}
				fmt.Fprintln(out, transcript.StatusLine(result.Name, kind, result.Detail, colorize))
			}

			session, err := ctx.newSceneSession(opCtx, out, false)
			if err == nil {
				fmt.Fprintln(out)
				for _, line := range transcript.SectionHeader("Story queue", colorize) {
					fmt.Fprintln(out, line)
				}
				panel := session.manager.Render()
				queueKind := transcript.StatusInfo
				message := fmt.Sprintf("%d scenes", panel.Count)
				if panel.CompileEnabled {
					queueKind = transcript.StatusOK
					message += " (ready to compile)"
				}
				fmt.Fprintln(out, transcript.StatusLine("Queued", queueKind, message, colorize))
			}

			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}
