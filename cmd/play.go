package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelplay/reelplay/api"
	"github.com/reelplay/reelplay/auth"
	"github.com/reelplay/reelplay/config"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/device"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/filesystem"
	"github.com/reelplay/reelplay/history"
	"github.com/reelplay/reelplay/icon"
	"github.com/reelplay/reelplay/key"
	"github.com/reelplay/reelplay/log"
	"github.com/reelplay/reelplay/metrics"
	"github.com/reelplay/reelplay/network"
	"github.com/reelplay/reelplay/player"
	"github.com/reelplay/reelplay/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("title", "t", "", "Title shown in the overlay and the player window")
	playCmd.Flags().Duration("start", 0, "Start position, e.g. 1m30s. A saved position takes precedence")
	playCmd.Flags().StringArrayP("subtitle", "s", nil, "External subtitle as language=uri, may be repeated")

	playCmd.Flags().Bool("autoplay", true, "Start playback once loaded")
	lo.Must0(viper.BindPFlag(key.PlayerAutoplay, playCmd.Flags().Lookup("autoplay")))

	playCmd.Flags().Bool("history", true, "Resume from and save to the watch history")
	lo.Must0(viper.BindPFlag(key.HistoryEnabled, playCmd.Flags().Lookup("history")))

	playCmd.Flags().String("metrics-listen", "", "Expose prometheus metrics on this address while playing")
	lo.Must0(viper.BindPFlag(key.MetricsListen, playCmd.Flags().Lookup("metrics-listen")))
}

var playCmd = &cobra.Command{
	Use:   "play <url|file|post id>",
	Short: "Play a video",
	Long: `Play a video from a URL, a local file or a post id resolved through the streaming API.
Playback resumes from the watch history unless --history=false is given.`,
	Example: `  reelplay play https://example.com/clip.mp4
  reelplay play ./clip.mkv --subtitle English=./clip.en.srt
  reelplay play 42 --start 1m30s`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if name := viper.GetString(key.PlayerEngine); name != "mpv" {
			handleErr(fmt.Errorf("unsupported player engine: %s", name))
		}

		handleErr(checkDependencies("mpv"))

		subtitles, err := parseSubtitles(lo.Must(cmd.Flags().GetStringArray("subtitle")))
		handleErr(err)

		target, err := resolveTarget(cmd.Context(), args[0])
		handleErr(err)

		if title := lo.Must(cmd.Flags().GetString("title")); title != "" {
			target.title = title
		}

		handleErr(play(cmd.Context(), playback{
			target:    target,
			start:     lo.Must(cmd.Flags().GetDuration("start")),
			subtitles: subtitles,
		}))
	},
}

type target struct {
	uri   string
	title string
}

// resolveTarget turns a URL, an existing file or a post id into a playable URI.
func resolveTarget(ctx context.Context, arg string) (target, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return target{}, errors.New("nothing to play")
	}

	if u, err := url.Parse(arg); err == nil && u.Scheme != "" && u.Host != "" {
		return target{uri: arg, title: filepath.Base(u.Path)}, nil
	}

	if exists, _ := filesystem.API().Exists(arg); exists {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return target{}, err
		}
		return target{uri: abs, title: filepath.Base(abs)}, nil
	}

	client, err := api.New(viper.GetString(key.APIBaseURL), config.Seconds(key.APITimeout), auth.GetToken)
	if err != nil {
		if errors.Is(err, api.ErrNoBaseURL) {
			return target{}, fmt.Errorf("%s is neither a url nor a file, and %s is not set", arg, key.APIBaseURL)
		}
		return target{}, err
	}

	post, err := client.Post(ctx, arg)
	if err != nil {
		return target{}, err
	}

	title := post.Caption
	if title == "" {
		title = post.PostID
	}

	return target{uri: post.VideoURL, title: title}, nil
}

// parseSubtitles reads language=uri pairs.
func parseSubtitles(raw []string) ([]controller.Subtitle, error) {
	subtitles := make([]controller.Subtitle, 0, len(raw))

	for _, s := range raw {
		language, uri, ok := strings.Cut(s, "=")
		language, uri = strings.TrimSpace(language), strings.TrimSpace(uri)
		if !ok || language == "" || uri == "" {
			return nil, fmt.Errorf("invalid subtitle %q, expected language=uri", s)
		}

		subtitles = append(subtitles, controller.Subtitle{Language: language, URI: uri})
	}

	return subtitles, nil
}

type playback struct {
	target    target
	start     time.Duration
	subtitles []controller.Subtitle
}

// play wires the surface, devices, history and connectivity into a controller and
// runs the player screen next to the optional metrics endpoint and connectivity probe.
func play(ctx context.Context, p playback) error {
	mpv := player.NewMPV(player.Options{Title: p.target.title})
	defer func() {
		if err := mpv.Close(); err != nil {
			log.Warn(err)
		}
	}()

	hub := &device.BackHub{}
	relay := &tui.Relay{}

	deps := controller.Deps{
		Surface:   mpv,
		Resources: device.NewDisplay(mpv, hub),
		Sender:    relay,
	}

	if viper.GetBool(key.HistoryEnabled) {
		store, err := history.NewStore(viper.GetString(key.HistoryBackend))
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn(err)
			}
		}()
		deps.Store = store
	}

	var prober *network.Prober
	if interval := config.Seconds(key.NetworkProbeInterval); interval > 0 {
		prober = network.NewProber("", interval)
		deps.Network = prober
	}

	var completed bool
	ctrl := controller.New(
		controller.Options{
			Source:     engine.Source{URI: p.target.uri, StartAt: p.start},
			Title:      p.target.title,
			AutoPlay:   viper.GetBool(key.PlayerAutoplay),
			Subtitles:  p.subtitles,
			OnComplete: func() { completed = true },
		},
		controller.LoadConfig(),
		deps,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, &tui.Options{Controller: ctrl, Hub: hub, Relay: relay})
	})

	if addr := viper.GetString(key.MetricsListen); addr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, addr)
		})
	}

	if prober != nil {
		g.Go(func() error {
			return prober.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if completed {
		fmt.Printf("%s Finished %s\n", icon.Get(icon.Success), p.target.title)
	}

	return nil
}
