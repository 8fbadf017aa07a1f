package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/tagtext/internal/engine"
	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/tokenizer"
	"github.com/dshills/tagtext/internal/logging"
)

// Config is the complete tagtext configuration.
type Config struct {
	Tokenizer TokenizerConfig `toml:"tokenizer" yaml:"tokenizer"`
	Document  DocumentConfig  `toml:"document" yaml:"document"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

// TokenizerConfig configures the default tokenizer.
type TokenizerConfig struct {
	// InnerPunctuation joins two letter or digit runs into one token.
	InnerPunctuation string `toml:"innerPunctuation" yaml:"innerPunctuation"`
	// NumericSeparators join two digit runs.
	NumericSeparators string `toml:"numericSeparators" yaml:"numericSeparators"`
	// Normalization is a Unicode form (NFC, NFD, NFKC, NFKD) applied to all
	// text entering a document, or "none".
	Normalization string `toml:"normalization" yaml:"normalization"`
	// CacheTTL enables tokenization caching when positive.
	CacheTTL Duration `toml:"cacheTTL" yaml:"cacheTTL"`
}

// DocumentConfig configures new documents.
type DocumentConfig struct {
	RootType     string   `toml:"rootType" yaml:"rootType"`
	NestingOrder []string `toml:"nestingOrder" yaml:"nestingOrder"`
	MaxHistory   int      `toml:"maxHistory" yaml:"maxHistory"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tokenizer: TokenizerConfig{
			InnerPunctuation:  tokenizer.DefaultInnerPunctuation,
			NumericSeparators: tokenizer.DefaultNumericSeparators,
			Normalization:     "none",
		},
		Document: DocumentConfig{
			RootType:   engine.DefaultRootType,
			MaxHistory: engine.DefaultMaxHistory,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if strings.ContainsFunc(c.Tokenizer.InnerPunctuation, tokenizer.IsSpace) {
		return &ValidationError{Path: "tokenizer.innerPunctuation", Message: "must not contain whitespace", Value: c.Tokenizer.InnerPunctuation}
	}
	if strings.ContainsFunc(c.Tokenizer.NumericSeparators, tokenizer.IsSpace) {
		return &ValidationError{Path: "tokenizer.numericSeparators", Message: "must not contain whitespace", Value: c.Tokenizer.NumericSeparators}
	}
	if _, _, ok := lookupNormForm(c.Tokenizer.Normalization); !ok {
		return &ValidationError{Path: "tokenizer.normalization", Message: "must be one of none, NFC, NFD, NFKC, NFKD", Value: c.Tokenizer.Normalization}
	}
	if c.Tokenizer.CacheTTL < 0 {
		return &ValidationError{Path: "tokenizer.cacheTTL", Message: "must not be negative", Value: c.Tokenizer.CacheTTL}
	}
	if _, err := c.NestingOrder(); err != nil {
		return &ValidationError{Path: "document", Message: err.Error(), Value: c.Document.NestingOrder}
	}
	if c.Document.MaxHistory < 0 {
		return &ValidationError{Path: "document.maxHistory", Message: "must not be negative", Value: c.Document.MaxHistory}
	}
	if _, ok := logging.LookupLogLevel(c.Logging.Level); !ok {
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level}
	}
	return nil
}

// NestingOrder returns the configured nesting order.
func (c *Config) NestingOrder() (annotation.NestingOrder, error) {
	return annotation.NewNestingOrder(c.Document.RootType, c.Document.NestingOrder...)
}

// NormForm returns the configured normalization form and whether one is
// set.
func (c *Config) NormForm() (norm.Form, bool) {
	form, set, _ := lookupNormForm(c.Tokenizer.Normalization)
	return form, set
}

func lookupNormForm(s string) (form norm.Form, set, ok bool) {
	switch strings.ToUpper(s) {
	case "", "NONE":
		return 0, false, true
	case "NFC":
		return norm.NFC, true, true
	case "NFD":
		return norm.NFD, true, true
	case "NFKC":
		return norm.NFKC, true, true
	case "NFKD":
		return norm.NFKD, true, true
	}
	return 0, false, false
}

// TokenizerOptions returns options for tokenizer.New.
func (c *Config) TokenizerOptions() []tokenizer.Option {
	return []tokenizer.Option{
		tokenizer.WithInnerPunctuation(c.Tokenizer.InnerPunctuation),
		tokenizer.WithNumericSeparators(c.Tokenizer.NumericSeparators),
	}
}

// NewTokenizer builds the configured tokenizer. Documents created from one
// configuration should share it so they share its cache.
func (c *Config) NewTokenizer() tokenizer.Tokenizer {
	t := tokenizer.Tokenizer(tokenizer.New(c.TokenizerOptions()...))
	if c.Tokenizer.CacheTTL > 0 {
		t = tokenizer.Cached(t, c.Tokenizer.CacheTTL.Std())
	}
	return t
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(c.Logging.Level)
}

// DocumentOptions returns engine options for t and the document settings.
// A nil t builds a new tokenizer.
func (c *Config) DocumentOptions(t tokenizer.Tokenizer) []engine.Option {
	if t == nil {
		t = c.NewTokenizer()
	}
	opts := []engine.Option{
		engine.WithTokenizer(t),
		engine.WithRootType(c.Document.RootType),
		engine.WithNestingOrder(c.Document.NestingOrder...),
		engine.WithMaxHistory(c.Document.MaxHistory),
	}
	if form, ok := c.NormForm(); ok {
		opts = append(opts, engine.WithNormalization(form))
	}
	return opts
}

// Duration is a time.Duration written as a string such as "5m".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
