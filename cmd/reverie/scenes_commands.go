package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reverie/internal/notifications"
	"reverie/internal/scenes"
	"reverie/internal/services"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	scenesCmd := &cobra.Command{
		Use:     "scenes",
		Aliases: []string{"story"},
		Short:   "Build and compile the story scene queue",
	}

	scenesCmd.AddCommand(newScenesAddCommand(ctx))
	scenesCmd.AddCommand(newScenesListCommand(ctx))
	scenesCmd.AddCommand(newScenesRemoveCommand(ctx))
	scenesCmd.AddCommand(newScenesClearCommand(ctx))
	scenesCmd.AddCommand(newScenesCompileCommand(ctx))

	return scenesCmd
}

func newScenesAddCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var media string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Append a generated image or video to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, err := scenes.ParseMediaType(media)
			if err != nil {
				return err
			}
			if strings.TrimSpace(kind) == "" {
				kind = string(mediaType)
			}

			opCtx := ctx.operationContext(cmd, "add")
			session, err := ctx.newSceneSession(opCtx, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			item, err := session.manager.Add(opCtx, args[0], kind, mediaType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s scene #%d: %s\n",
				scenes.TypeLabel(item.MediaType, item.Kind), session.manager.Len(), item.URL)
			session.terminal.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Generation source tag (wan, s2v, infinitetalk, ...); defaults to the media type")
	cmd.Flags().StringVarP(&media, "media", "m", string(scenes.MediaVideo), "Media type: video or image")
	return cmd
}

type sceneJSON struct {
	Ordinal   int    `json:"ordinal"`
	URL       string `json:"url"`
	Kind      string `json:"kind"`
	MediaType string `json:"media_type"`
	Label     string `json:"label"`
	AddedAt   string `json:"added_at,omitempty"`
}

type queueJSON struct {
	Count          int         `json:"count"`
	CompileEnabled bool        `json:"compile_enabled"`
	Scenes         []sceneJSON `json:"scenes"`
}

func newScenesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the queued scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := ctx.operationContext(cmd, "list")
			session, err := ctx.newSceneSession(opCtx, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			panel := session.manager.Render()
			if !jsonOutput {
				session.terminal.WritePanel(panel)
				return nil
			}

			items := session.manager.Items()
			payload := queueJSON{
				Count:          panel.Count,
				CompileEnabled: panel.CompileEnabled,
				Scenes:         make([]sceneJSON, 0, len(panel.Cards)),
			}
			for i, card := range panel.Cards {
				entry := sceneJSON{
					Ordinal:   card.Ordinal,
					URL:       card.URL,
					Kind:      card.Kind,
					MediaType: string(card.MediaType),
					Label:     card.Label,
				}
				if i < len(items) && !items[i].AddedAt.IsZero() {
					entry.AddedAt = items[i].AddedAt.UTC().Format(time.RFC3339Nano)
				}
				payload.Scenes = append(payload.Scenes, entry)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newScenesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <position>",
		Aliases: []string{"rm"},
		Short:   "Remove the scene at a 1-based position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[0], err)
			}

			opCtx := ctx.operationContext(cmd, "remove")
			session, err := ctx.newSceneSession(opCtx, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			if !session.manager.RemoveAt(opCtx, position-1) {
				return services.Wrap(services.ErrValidation, "cli", "remove",
					fmt.Sprintf("no scene at position %d (queue has %d)", position, session.manager.Len()), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed scene #%d (%d remaining)\n", position, session.manager.Len())
			session.terminal.Flush()
			return nil
		},
	}
}

func newScenesClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every queued scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := ctx.operationContext(cmd, "clear")
			session, err := ctx.newSceneSession(opCtx, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			removed := session.manager.Len()
			session.manager.Clear(opCtx)
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d scenes\n", removed)
			return nil
		},
	}
}

func newScenesCompileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Submit the queue to the backend and print the compiled story URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lock := flock.New(cfg.CompileLockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return services.Wrap(services.ErrPersistence, "cli", "compile", "acquire compile lock", err)
			}
			if !locked {
				return services.Wrap(services.ErrConflict, "cli", "compile",
					fmt.Sprintf("another compile is already running (lock %s)", cfg.CompileLockPath()), nil)
			}
			defer func() { _ = lock.Unlock() }()

			opCtx := services.WithRequestID(ctx.operationContext(cmd, "compile"), uuid.NewString())
			session, err := ctx.newSceneSession(opCtx, cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}

			sceneCount := session.manager.Len()
			outcome, err := session.manager.Compile(opCtx)
			session.terminal.Flush()
			if err != nil {
				if errors.Is(err, scenes.ErrNotEnoughScenes) {
					return fmt.Errorf("compile needs at least %d scenes, queue has %d", scenes.MinCompileScenes, sceneCount)
				}
				if !errors.Is(err, scenes.ErrCompileInFlight) {
					ctx.notify(opCtx, func(svc notifications.Service) error {
						return svc.NotifyCompileFailed(opCtx, sceneCount, err)
					})
				}
				return fmt.Errorf("compile failed: %w", err)
			}
			ctx.notify(opCtx, func(svc notifications.Service) error {
				return svc.NotifyStoryCompiled(opCtx, len(outcome.Submitted), outcome.VideoURL, outcome.Duration)
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Compiled %d scenes in %s\n", len(outcome.Submitted), outcome.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
