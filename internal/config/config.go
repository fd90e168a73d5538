package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Log format constants
	FormatConsole = "console"
	FormatJSON    = "json"

	// Default values
	DefaultLogLevel    = "info"
	DefaultLogFormat   = FormatConsole
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultMetaLabel   = "AI_Tagging"

	// EnvPrefix is prepended to every environment variable the tool reads
	EnvPrefix = "TENDER_AI"
)

// ErrMissingRequired is returned when a required argument was not supplied
var ErrMissingRequired = errors.New("missing required argument")

// Config holds all configuration for a tagging build
type Config struct {
	// Inputs
	TemplatePath   string
	PDFPaths       []string
	AmendmentPaths []string
	RulesPath      string // optional

	// Output
	OutputPath string

	// Application configuration
	Version     string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum PDF file size in bytes
	MetaLabel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		MaxFileSize: DefaultMaxFileSize,
		MetaLabel:   DefaultMetaLabel,
	}
}

// LoadFromArgs parses args (without the program name) and returns a validated configuration
func LoadFromArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	fs := pflag.NewFlagSet("tender-tagger", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	populateConfigFromViper(v, fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("template", cfg.TemplatePath)
	v.SetDefault("rules", cfg.RulesPath)
	v.SetDefault("out", cfg.OutputPath)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("meta-label", cfg.MetaLabel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("template", cfg.TemplatePath, "Path to the Excel template defining the sheet schema (required)")
	fs.StringArray("pdf", nil, "Path to a main tender PDF (RfS/ITB etc.); repeat for more (required)")
	fs.StringArray("amendment", nil, "Path to a corrigendum/addendum PDF; repeat for more")
	fs.String("rules", cfg.RulesPath, "YAML rules file for regex extractors")
	fs.String("out", cfg.OutputPath, "Output Excel path (required)")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("logformat", cfg.LogFormat, "Log format (console, json)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String("meta-label", cfg.MetaLabel, "Label used for the TenderMeta build row")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	for _, name := range []string{"template", "rules", "out", "loglevel", "logformat", "maxfilesize", "meta-label"} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nTender AI Tagger - builds an AI-tagging workbook from power-sector tender PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.SetOutput(os.Stderr)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --template=template.xlsx --pdf=rfs.pdf --out=tagged.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --template=template.xlsx --pdf=rfs.pdf --pdf=ppa.pdf "+
			"--amendment=corr1.pdf --rules=rules.yaml --out=tagged.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_TEMPLATE     Template workbook\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_PDF          Main PDFs (space separated)\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_AMENDMENT    Amendment PDFs (space separated)\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_RULES        Rules file\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_OUT          Output workbook\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_LOGFORMAT    Log format\n")
		fmt.Fprintf(os.Stderr, "  TENDER_AI_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
// Repeatable flags are read from the flag set directly so paths containing
// commas survive; the environment is consulted only when no flag was given.
func populateConfigFromViper(v *viper.Viper, fs *pflag.FlagSet, cfg *Config) {
	cfg.TemplatePath = v.GetString("template")
	cfg.RulesPath = v.GetString("rules")
	cfg.OutputPath = v.GetString("out")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.LogFormat = strings.ToLower(v.GetString("logformat"))
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.MetaLabel = v.GetString("meta-label")

	cfg.PDFPaths = repeatedValue(v, fs, "pdf")
	cfg.AmendmentPaths = repeatedValue(v, fs, "amendment")
}

func repeatedValue(v *viper.Viper, fs *pflag.FlagSet, name string) []string {
	if fs.Changed(name) {
		values, _ := fs.GetStringArray(name)
		return values
	}
	return v.GetStringSlice(name)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.TemplatePath == "" {
		return fmt.Errorf("%w: --template", ErrMissingRequired)
	}
	if len(c.PDFPaths) == 0 {
		return fmt.Errorf("%w: --pdf", ErrMissingRequired)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: --out", ErrMissingRequired)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Template: %s, PDFs: %v, Amendments: %v, Rules: %s, Out: %s, LogLevel: %s, MaxFileSize: %d}",
		c.TemplatePath, c.PDFPaths, c.AmendmentPaths, c.RulesPath, c.OutputPath, c.LogLevel, c.MaxFileSize)
}
