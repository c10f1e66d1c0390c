// Package config holds the settings of one generator run. The settings come from command line
// flags and an optional TOML file, and are validated before any automaton work begins.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/language"
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/pflag"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.config")
}

const (
	DefaultMarginColumns = 8000
	DefaultIndentSpaces  = 2

	minMarginColumns = 80
	minIndentSpaces  = 2

	reportExtension = ".txt"
)

var (
	ErrInvalidValue  = errors.New("invalid value")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnknownOption = errors.New("unknown option")
	ErrMissingSource = errors.New("no grammar file given")
)

// Error is a configuration error. It is reported before the grammar is processed.
type Error struct {
	Option string
	Value  string
	Cause  error
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %v", e.Option, e.Cause)
	}
	return fmt.Sprintf("%v: %v: %v", e.Option, e.Cause, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type Config struct {
	// Source is the path of the grammar file.
	Source string

	// Output, Include and Report are the paths of the produced files. Empty paths are derived
	// from Source.
	Output  string
	Include string
	Report  string

	Language  language.ID
	Algorithm grammar.Algorithm
	Packing   compressor.Mode
	Driver    language.Driver

	MarginColumns      int
	IndentSpaces       int
	EmitLineDirectives bool

	// GenerateIncludeFile is nil unless it was set explicitly. The default depends on the language.
	GenerateIncludeFile *bool

	// NoReport suppresses the report file.
	NoReport bool

	Verbose bool

	// SkeletonDir replaces the built-in skeletons when it is not empty.
	SkeletonDir string
}

func New() *Config {
	return &Config{
		Language:           language.IDC,
		Algorithm:          grammar.AlgorithmLALR,
		Packing:            compressor.ModePacked,
		Driver:             language.DriverParser,
		MarginColumns:      DefaultMarginColumns,
		IndentSpaces:       DefaultIndentSpaces,
		EmitLineDirectives: true,
	}
}

// Validate checks the settings and replaces the aliases of the enumerated options with their
// canonical values.
func (c *Config) Validate() error {
	if c.Source == "" {
		return &Error{Option: "source", Cause: ErrMissingSource}
	}
	id, err := language.ParseID(string(c.Language))
	if err != nil {
		return &Error{Option: "language", Value: string(c.Language), Cause: ErrInvalidValue}
	}
	alg, err := grammar.ParseAlgorithm(string(c.Algorithm))
	if err != nil {
		return &Error{Option: "algorithm", Value: string(c.Algorithm), Cause: ErrInvalidValue}
	}
	mode, err := compressor.ParseMode(string(c.Packing))
	if err != nil {
		return &Error{Option: "packing", Value: string(c.Packing), Cause: ErrInvalidValue}
	}
	driver, err := language.ParseDriver(string(c.Driver))
	if err != nil {
		return &Error{Option: "driver", Value: string(c.Driver), Cause: ErrInvalidValue}
	}
	if c.MarginColumns <= minMarginColumns {
		return &Error{Option: "margin", Value: fmt.Sprint(c.MarginColumns), Cause: ErrOutOfRange}
	}
	if c.IndentSpaces < minIndentSpaces {
		return &Error{Option: "indent", Value: fmt.Sprint(c.IndentSpaces), Cause: ErrOutOfRange}
	}

	c.Language = id
	c.Algorithm = alg
	c.Packing = mode
	c.Driver = driver
	return nil
}

// IncludeFile reports whether the declarations go into a separate include file.
func (c *Config) IncludeFile(b language.Backend) bool {
	if c.GenerateIncludeFile != nil {
		return *c.GenerateIncludeFile
	}
	return b.DefaultInclude()
}

func (c *Config) base() string {
	return strings.TrimSuffix(c.Source, filepath.Ext(c.Source))
}

func (c *Config) OutputPath(b language.Backend) string {
	if c.Output != "" {
		return c.Output
	}
	return c.base() + b.Extension()
}

// IncludePath returns the path of the include file, or an empty string when no include file is
// generated.
func (c *Config) IncludePath(b language.Backend) string {
	if !c.IncludeFile(b) {
		return ""
	}
	if c.Include != "" {
		return c.Include
	}
	return c.base() + b.IncludeExtension()
}

// ReportPath returns the path of the report, or an empty string when no report is written.
func (c *Config) ReportPath() string {
	if c.NoReport {
		return ""
	}
	if c.Report != "" {
		return c.Report
	}
	return c.base() + reportExtension
}

// ParseSwitch accepts the spellings of a boolean option.
func ParseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrInvalidValue, s)
}

// Option names shared by the flags and the run-config file.
const (
	OptLanguage  = "language"
	OptAlgorithm = "algorithm"
	OptPacking   = "packing"
	OptDriver    = "driver"
	OptMargin    = "margin"
	OptIndent    = "indent"
	OptNoLine    = "noline"
	OptInclude   = "include"
	OptVerbose   = "verbose"
	OptSkeletons = "skeleton-dir"
	OptOutput    = "output"
	OptReport    = "report"
	OptNoReport  = "noreport"
)

// BindFlags registers the options as flags writing into c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.VarP(&languageValue{c}, OptLanguage, "l", "target language (c, j|java, p|pascal)")
	fs.VarP(&algorithmValue{c}, OptAlgorithm, "a", "automaton construction (s|slr, l|lalr)")
	fs.VarP(&packingValue{c}, OptPacking, "p", "table layout (p|packed, t|tabular)")
	fs.VarP(&driverValue{c}, OptDriver, "d", "skeleton family (parser, scanner)")
	fs.IntVar(&c.MarginColumns, OptMargin, c.MarginColumns, "right margin of the generated tables")
	fs.IntVar(&c.IndentSpaces, OptIndent, c.IndentSpaces, "spaces per indentation level")
	fs.Var(&noLineValue{c}, OptNoLine, "do not emit line directives")
	fs.Lookup(OptNoLine).NoOptDefVal = "true"
	fs.VarP(&includeValue{c}, OptInclude, "i", "generate an include file (true|yes|on|1, false|no|off|0)")
	fs.Lookup(OptInclude).NoOptDefVal = "true"
	fs.BoolVarP(&c.Verbose, OptVerbose, "v", c.Verbose, "describe the automaton in the report")
	fs.StringVar(&c.SkeletonDir, OptSkeletons, c.SkeletonDir, "directory of the skeletons")
	fs.StringVarP(&c.Output, OptOutput, "o", c.Output, "output file")
	fs.StringVar(&c.Report, OptReport, c.Report, "report file")
	fs.BoolVar(&c.NoReport, OptNoReport, c.NoReport, "do not write a report")
}

// File is the run-config file format.
type File struct {
	Language    string `toml:"language"`
	Algorithm   string `toml:"algorithm"`
	Packing     string `toml:"packing"`
	Driver      string `toml:"driver"`
	Margin      *int   `toml:"margin"`
	Indent      *int   `toml:"indent"`
	Line        *bool  `toml:"line"`
	Include     string `toml:"include"`
	Verbose     *bool  `toml:"verbose"`
	SkeletonDir string `toml:"skeleton_dir"`
	Output      string `toml:"output"`
	Report      string `toml:"report"`
}

// LoadFile applies a run-config file to c. set reports whether an option was given on the
// command line; such an option keeps its value.
func (c *Config) LoadFile(path string, set func(option string) bool) error {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return &Error{Option: "config", Value: path, Cause: err}
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return &Error{Option: "config", Value: keys[0].String(), Cause: ErrUnknownOption}
	}
	if set == nil {
		set = func(string) bool { return false }
	}
	tracer().Debugf("run config %v", path)

	values := []struct {
		option string
		value  string
		target pflag.Value
	}{
		{OptLanguage, f.Language, &languageValue{c}},
		{OptAlgorithm, f.Algorithm, &algorithmValue{c}},
		{OptPacking, f.Packing, &packingValue{c}},
		{OptDriver, f.Driver, &driverValue{c}},
		{OptInclude, f.Include, &includeValue{c}},
	}
	for _, v := range values {
		if v.value == "" || set(v.option) {
			continue
		}
		if err := v.target.Set(v.value); err != nil {
			return &Error{Option: v.option, Value: v.value, Cause: ErrInvalidValue}
		}
	}
	if f.Margin != nil && !set(OptMargin) {
		c.MarginColumns = *f.Margin
	}
	if f.Indent != nil && !set(OptIndent) {
		c.IndentSpaces = *f.Indent
	}
	if f.Line != nil && !set(OptNoLine) {
		c.EmitLineDirectives = *f.Line
	}
	if f.Verbose != nil && !set(OptVerbose) {
		c.Verbose = *f.Verbose
	}
	if f.SkeletonDir != "" && !set(OptSkeletons) {
		c.SkeletonDir = f.SkeletonDir
	}
	if f.Output != "" && !set(OptOutput) {
		c.Output = f.Output
	}
	if f.Report != "" && !set(OptReport) {
		c.Report = f.Report
	}
	return nil
}
