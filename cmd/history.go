package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/invopop/jsonschema"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/muesli/reflow/truncate"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/history"
	"github.com/reelplay/reelplay/icon"
	"github.com/reelplay/reelplay/key"
	"github.com/reelplay/reelplay/style"
	"github.com/reelplay/reelplay/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().String("backend", "", "History backend ("+strings.Join(history.Backends, ", ")+")")
	lo.Must0(historyCmd.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return history.Backends, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.HistoryBackend, historyCmd.PersistentFlags().Lookup("backend")))
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the watch history",
}

// withStore opens the configured history store for the duration of fn.
func withStore(fn func(history.Store) error) error {
	store, err := history.NewStore(viper.GetString(key.HistoryBackend))
	if err != nil {
		return err
	}

	return errors.Join(fn(store), store.Close())
}

// filterEntries keeps entries whose title or uri fuzzily matches query.
func filterEntries(entries []history.Entry, query string) []history.Entry {
	if query == "" {
		return entries
	}

	return lo.Filter(entries, func(e history.Entry, _ int) bool {
		return fuzzy.MatchNormalizedFold(query, e.Title) || fuzzy.MatchNormalizedFold(query, e.URI)
	})
}

func init() {
	historyCmd.AddCommand(historyListCmd)

	historyListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyListCmd.Flags().Bool("schema", false, "Print the JSON schema of an entry and exit")
	historyListCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries")

	historyListCmd.SetOut(os.Stdout)
}

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List watched videos, most recent first",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect([]history.Entry{})))
			return
		}

		var (
			query  = strings.Join(args, " ")
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			limit  = lo.Must(cmd.Flags().GetInt("limit"))
		)

		handleErr(withStore(func(store history.Store) error {
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			entries = filterEntries(entries, query)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if asJson {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			}

			if len(entries) == 0 {
				cmd.Println(style.Faint("No history"))
				return nil
			}

			width := uint(util.TerminalWidth(80))
			for _, e := range entries {
				cmd.Println(truncate.StringWithTail(formatEntry(e), width, "…"))
			}
			cmd.Println(style.Faint(util.Quantify(len(entries), "video", "videos")))

			return nil
		}))
	},
}

func formatEntry(e history.Entry) string {
	percent := fmt.Sprintf("%3d%%", int(e.Progress()*100))
	return fmt.Sprintf(
		"%s %s %s",
		style.Fg(color.Purple)(percent),
		e.String(),
		style.Faint(e.WatchedAt().Format("2006-01-02 15:04")),
	)
}

func init() {
	historyCmd.AddCommand(historyResumeCmd)
}

var historyResumeCmd = &cobra.Command{
	Use:   "resume [query]",
	Short: "Pick a video from the watch history and continue it",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(checkDependencies("mpv"))

		var entries []history.Entry
		handleErr(withStore(func(store history.Store) error {
			all, err := store.List(cmd.Context())
			entries = filterEntries(all, strings.Join(args, " "))
			return err
		}))

		if len(entries) == 0 {
			handleErr(errors.New("nothing to resume"))
		}

		entry := entries[0]
		if len(entries) > 1 {
			options := lo.Map(entries, func(e history.Entry, _ int) string {
				return e.String()
			})

			var index int
			handleErr(survey.AskOne(&survey.Select{
				Message: "Resume",
				Options: options,
			}, &index))
			entry = entries[index]
		}

		fmt.Printf("%s %s\n", icon.Get(icon.Resume), entry.String())
		handleErr(resume(cmd.Context(), entry))
	},
}

func resume(ctx context.Context, entry history.Entry) error {
	title := entry.Title
	if title == "" {
		title = entry.URI
	}

	return play(ctx, playback{target: target{uri: entry.URI, title: title}})
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <uri>",
	Short: "Forget a single video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(withStore(func(store history.Store) error {
			return store.Remove(cmd.Context(), args[0])
		}))

		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole watch history",
	Run: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{
				Message: "Delete the whole watch history?",
				Default: false,
			}, &confirmed))

			if !confirmed {
				return
			}
		}

		handleErr(withStore(func(store history.Store) error {
			return store.Clear(cmd.Context())
		}))

		fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
