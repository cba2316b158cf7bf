package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"winquiet/internal/config"
	"winquiet/internal/focusassist"
	"winquiet/internal/notifystate"
	"winquiet/internal/wnf"
	"winquiet/pkg/quiet"
)

func newNotificationStateCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "notification-state",
		Short: "Print the user notification state",
		Long: `Print the QUERY_USER_NOTIFICATION_STATE value reported by the shell,
for example QUNS_ACCEPTS_NOTIFICATIONS or QUNS_BUSY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []quiet.NotificationOption
			if raw {
				opts = append(opts, quiet.NotificationRaw())
			}
			v, err := a.client.QueryUserNotificationState(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the numeric state")
	return cmd
}

func newFullscreenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fullscreen",
		Short: "Exit 0 if a fullscreen or presentation-mode app is running",
		Long: `Report whether a fullscreen application, a Direct3D exclusive-mode
application, or presentation mode is active.

Exit status is 0 when one is, 1 when none is or the state cannot be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			running := a.client.IsFullscreenAppRunning(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(running))
			if !running {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func newFocusAssistCmd(a *app) *cobra.Command {
	var raw, strict, noVerify bool
	cmd := &cobra.Command{
		Use:   "focus-assist [on|off]",
		Short: "Print or set the focus assist state",
		Long: `Without arguments, print the active focus assist level: OFF,
PRIORITY_ONLY, or ALARMS_ONLY. NOT_SUPPORTED and FAILED are printed unless
--strict is given, in which case they are errors.

With "on" or "off", change the mode. Nothing is written when the mode already
holds. Unless --no-verify is given, the state is read back after the
configured settle delay and an unchanged state is an error.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				var opts []quiet.FocusAssistOption
				if raw {
					opts = append(opts, quiet.FocusAssistRaw())
				}
				if strict {
					opts = append(opts, quiet.FocusAssistStrict())
				}
				v, err := a.client.QueryFocusAssistState(cmd.Context(), opts...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
				return nil
			}

			var opts []quiet.ToggleOption
			if noVerify {
				opts = append(opts, quiet.WithoutVerify())
			}
			return a.client.FocusAssist(cmd.Context(), args[0] == "on", opts...)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the numeric level")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on NOT_SUPPORTED and FAILED")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Do not read the state back after a change")
	return cmd
}

// statusReport omits a state whose entry point is unbound; the symbol is
// listed under Unavailable instead.
type statusReport struct {
	NotificationState *notifystate.Value `json:"notification_state,omitempty" yaml:"notification_state,omitempty"`
	Fullscreen        bool               `json:"fullscreen" yaml:"fullscreen"`
	FocusAssist       *focusassist.Value `json:"focus_assist,omitempty" yaml:"focus_assist,omitempty"`
	Unavailable       []string           `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print notification and focus assist state together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want text, json, or yaml)", output)
			}

			var r statusReport
			for _, sig := range a.client.Unavailable() {
				r.Unavailable = append(r.Unavailable, sig.Symbol)
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				v, err := a.client.QueryUserNotificationState(ctx)
				if err != nil {
					return unlessMissing(err)
				}
				r.NotificationState = &v
				r.Fullscreen = v.State.Fullscreen()
				return nil
			})
			g.Go(func() error {
				v, err := a.client.QueryFocusAssistState(ctx)
				if err != nil {
					return unlessMissing(err)
				}
				r.FocusAssist = &v
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			return writeStatus(cmd.OutOrStdout(), output, r)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

// unlessMissing drops an unbound entry point error; status reports those
// through Unavailable.
func unlessMissing(err error) error {
	if errors.Is(err, quiet.ErrMissingEntryPoint) {
		return nil
	}
	return err
}

func writeStatus(w io.Writer, format string, r statusReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	notification, focus := "unavailable", "unavailable"
	if r.NotificationState != nil {
		notification = r.NotificationState.String()
	}
	if r.FocusAssist != nil {
		focus = r.FocusAssist.String()
	}
	fmt.Fprintf(w, "Notification state: %s\n", notification)
	fmt.Fprintf(w, "Fullscreen:         %t\n", r.Fullscreen)
	fmt.Fprintf(w, "Focus assist:       %s\n", focus)
	for _, s := range r.Unavailable {
		fmt.Fprintf(w, "Unavailable:        %s\n", s)
	}
	return nil
}

func newWNFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "wnf",
		Short:  "Read or publish raw WNF state data",
		Hidden: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "query <state-name>",
		Short: "Print the first four bytes of a state as a signed level",
		Long: `State names are accepted as 0x0D83063EA3BF1C75, as two words
(0xA3BF1C75,0x0D83063E), or by symbolic name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := wnf.ParseStateName(args[0])
			if err != nil {
				return err
			}
			s, err := a.client.ReadState(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), int32(s))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <state-name> <b0,b1,b2,b3>",
		Short: "Publish four bytes to a state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := wnf.ParseStateName(args[0])
			if err != nil {
				return err
			}
			p, err := wnf.ParsePayload(args[1])
			if err != nil {
				return err
			}
			return a.client.WriteState(cmd.Context(), name, p)
		},
	})
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	var output string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, environment
overrides and command-line flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(cmd.OutOrStdout(), output, a.cfg)
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "toml", "Output format: toml, json, yaml")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func writeConfig(w io.Writer, format string, cfg *config.Config) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want toml, json, or yaml)", format)
	}
}
