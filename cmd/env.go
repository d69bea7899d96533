package cmd

import (
	"os"
	"slices"

	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/config"
	"github.com/reelplay/reelplay/style"
	"github.com/reelplay/reelplay/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envNames returns every supported environment variable, sorted.
func envNames() []string {
	names := lo.Map(config.EnvExposed, func(k string, _ int) string {
		field := config.Default[k]
		return field.Env()
	})
	names = append(names, where.EnvConfigPath)
	slices.Sort(names)
	return names
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the supported environment variables",
	Long:  `Display the supported environment variables and their current values.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range envNames() {
			value := os.Getenv(env)
			present := value != ""

			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
