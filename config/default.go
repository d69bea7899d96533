package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/key"
	"github.com/reelplay/reelplay/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a single registered configuration entry.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field for `reelplay config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        reflect.TypeOf(f.Value).String(),
	})
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerEngine, "mpv", "Playback surface to drive.\nOnly mpv is supported")
	register(key.PlayerAutoplay, true, "Start playback as soon as the source is loaded")
	register(key.PlayerHideControlsAfter, 3000, "Milliseconds of inactivity before the overlay hides")
	register(key.PlayerDoubleTapWindow, 300, "Maximum milliseconds between two taps of a double tap")
	register(key.PlayerSkipStep, 10000, "Milliseconds skipped by a double tap or the skip buttons")
	register(key.PlayerSkipPulse, 500, "Milliseconds the skip indicator stays on screen")
	register(key.PlayerOuterTapTogglesOverlay, false, "Let a single tap on the left or right third toggle the overlay\nOtherwise only the middle third toggles it")
	register(key.HistoryEnabled, true, "Persist watch progress and resume from it")
	register(key.HistoryBackend, "file", "Watch history backend.\nAvailable options are: file, sqlite, memory")
	register(key.HistoryPersistInterval, 5000, "Milliseconds between watch progress snapshots")
	register(key.APIBaseURL, "", "Base URL of the streaming API used to resolve content ids")
	register(key.APITimeout, 20, "Seconds before an API request is abandoned")
	register(key.NetworkProbeInterval, 15, "Seconds between connectivity probes.\nSet to 0 to disable the connectivity banner")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when help is shown")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain, kaomoji, squares")
	register(key.MetricsListen, "", "Address to expose prometheus metrics on while playing, e.g. 127.0.0.1:9464")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
