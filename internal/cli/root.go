// Package cli implements vireyactl, a command-line client for the Vireya
// backend API. Settings come from flags, VIREYA_* environment variables or
// an optional YAML file, in that order of precedence.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/sysutil"
)

const envPrefix = "VIREYA"

// Setting keys, also the flag names.
const (
	keyBaseURL = "base-url"
	keyTimeout = "timeout"
	keyAPIKey  = "api-key"
	keyPretty  = "pretty"
	keyVerbose = "verbose"
	keyConfig  = "config"
)

type env struct {
	v   *viper.Viper
	log zerolog.Logger
}

func (e *env) client() (*apiclient.Client, error) {
	base := strings.TrimSpace(e.v.GetString(keyBaseURL))
	if base == "" {
		return nil, fmt.Errorf("%s is empty", keyBaseURL)
	}
	opts := []apiclient.Option{
		apiclient.WithTimeout(e.v.GetDuration(keyTimeout)),
		apiclient.WithLogger(e.log),
	}
	if key := strings.TrimSpace(e.v.GetString(keyAPIKey)); key != "" {
		opts = append(opts, apiclient.WithHeader(apiclient.HeaderAPIKey, key))
	}
	return apiclient.New(base, opts...), nil
}

func (e *env) pretty() bool { return sysutil.IsTruthy(e.v.GetString(keyPretty)) }

// NewRootCmd builds the vireyactl command tree.
func NewRootCmd(version string) *cobra.Command {
	e := &env{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "vireyactl",
		Short:         "Talk to the Vireya backend API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if path := e.v.GetString(keyConfig); path != "" {
				e.v.SetConfigFile(path)
				if err := e.v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config %s: %w", path, err)
				}
			}
			if e.v.GetBool(keyVerbose) {
				e.log = sysutil.SetupLogger("debug", true, "vireyactl")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String(keyBaseURL, "http://127.0.0.1:8000", "backend base URL")
	pf.Duration(keyTimeout, 30*time.Second, "per-request timeout, 0 for none")
	pf.String(keyAPIKey, "", "backend API key")
	pf.String(keyPretty, "true", "indent JSON output")
	pf.BoolP(keyVerbose, "v", false, "log requests to stderr")
	pf.String(keyConfig, "", "YAML settings file")

	e.v.SetEnvPrefix(envPrefix)
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	_ = e.v.BindPFlags(pf)

	root.AddCommand(
		welcomeCmd(e),
		analyticsCmd(e),
		contentCmd(e),
		overviewCmd(e),
		supportCmd(e),
		recognizeCmd(e),
	)
	return root
}

// Execute runs vireyactl with os.Args.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}
