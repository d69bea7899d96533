package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelplay/reelplay/auth"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/icon"
	"github.com/reelplay/reelplay/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the streaming API token",
	Long:  "The token is kept in the system keyring and sent as a bearer token when resolving post ids.",
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().Bool("stdin", false, "Read the token from standard input")
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token",
	Run: func(cmd *cobra.Command, args []string) {
		var token string

		if stdin, _ := cmd.Flags().GetBool("stdin"); stdin {
			raw, err := io.ReadAll(os.Stdin)
			handleErr(err)
			token = string(raw)
		} else {
			handleErr(survey.AskOne(&survey.Password{
				Message: "API token:",
			}, &token, survey.WithValidator(survey.Required)))
		}

		token = strings.TrimSpace(token)
		if token == "" {
			handleErr(errors.New("empty token"))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token saved\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := auth.GetToken()
		handleErr(err)

		if token == "" {
			fmt.Println(style.Fg(color.Red)("not logged in"))
			return
		}

		fmt.Println(style.Fg(color.Green)("logged in"))
	},
}
