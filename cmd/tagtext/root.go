package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dshills/tagtext/internal/config"
	"github.com/dshills/tagtext/internal/engine"
	"github.com/dshills/tagtext/internal/engine/tokenizer"
	"github.com/dshills/tagtext/internal/logging"
)

// defaultConfigFiles are tried in order when --config is not given.
var defaultConfigFiles = []string{"tagtext.toml", "tagtext.yaml", "tagtext.yml"}

// app is the state shared by all commands after flags and configuration
// have been resolved.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger
	tok    tokenizer.Tokenizer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "tagtext",
		Short:         "Annotated plain-text documents",
		Long:          `tagtext tokenizes plain text into an annotated document model and keeps annotations in step with edits.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default: ./tagtext.toml or ./tagtext.yaml)")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("normalization", "", "Unicode normalization (none|NFC|NFD|NFKC|NFKD)")
	flags.String("color", "auto", "colorize output (auto|on|off)")

	for _, name := range []string{"config", "log-level", "normalization", "color"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix("TAGTEXT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newTokenizeCmd(a),
		newSentencesCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads the configuration file and layers flags and TAGTEXT_*
// environment variables over it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.v.IsSet("log-level") {
		cfg.Logging.Level = a.v.GetString("log-level")
	}
	if a.v.IsSet("normalization") {
		cfg.Tokenizer.Normalization = a.v.GetString("normalization")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch mode := a.v.GetString("color"); mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(cmd.OutOrStdout())
	default:
		return fmt.Errorf("invalid --color %q: want auto, on or off", mode)
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: cmd.ErrOrStderr(),
		Prefix: "tagtext",
	})
	logging.Set(a.logger)
	a.tok = cfg.NewTokenizer()
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if path := a.v.GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return config.Load(path)
	}
	for _, path := range defaultConfigFiles {
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return config.Default(), nil
}

// newDocument creates a document over text with the resolved
// configuration. Documents share the app's tokenizer and its cache.
func (a *app) newDocument(text string) (*engine.Document, error) {
	opts := append(a.cfg.DocumentOptions(a.tok),
		engine.WithLogger(a.logger),
		engine.WithContent(text),
	)
	return engine.New(opts...)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := config.FormatTOML
			if yml, _ := cmd.Flags().GetBool("yaml"); yml {
				format = config.FormatYAML
			}
			return a.cfg.Encode(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().Bool("yaml", false, "print YAML instead of TOML")
	return cmd
}
