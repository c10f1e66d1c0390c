package config

import (
	"strconv"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/language"
	"github.com/spf13/pflag"
)

// The values below let pflag parse the enumerated options straight into a Config.

var (
	_ pflag.Value = &languageValue{}
	_ pflag.Value = &algorithmValue{}
	_ pflag.Value = &packingValue{}
	_ pflag.Value = &driverValue{}
	_ pflag.Value = &includeValue{}
	_ pflag.Value = &noLineValue{}
)

type languageValue struct {
	c *Config
}

func (v *languageValue) String() string {
	if v.c == nil {
		return ""
	}
	return string(v.c.Language)
}

func (v *languageValue) Set(s string) error {
	id, err := language.ParseID(s)
	if err != nil {
		return err
	}
	v.c.Language = id
	return nil
}

func (v *languageValue) Type() string {
	return "language"
}

type algorithmValue struct {
	c *Config
}

func (v *algorithmValue) String() string {
	if v.c == nil {
		return ""
	}
	return string(v.c.Algorithm)
}

func (v *algorithmValue) Set(s string) error {
	alg, err := grammar.ParseAlgorithm(s)
	if err != nil {
		return err
	}
	v.c.Algorithm = alg
	return nil
}

func (v *algorithmValue) Type() string {
	return "algorithm"
}

type packingValue struct {
	c *Config
}

func (v *packingValue) String() string {
	if v.c == nil {
		return ""
	}
	return string(v.c.Packing)
}

func (v *packingValue) Set(s string) error {
	mode, err := compressor.ParseMode(s)
	if err != nil {
		return err
	}
	v.c.Packing = mode
	return nil
}

func (v *packingValue) Type() string {
	return "packing"
}

type driverValue struct {
	c *Config
}

func (v *driverValue) String() string {
	if v.c == nil {
		return ""
	}
	return string(v.c.Driver)
}

func (v *driverValue) Set(s string) error {
	d, err := language.ParseDriver(s)
	if err != nil {
		return err
	}
	v.c.Driver = d
	return nil
}

func (v *driverValue) Type() string {
	return "driver"
}

type includeValue struct {
	c *Config
}

func (v *includeValue) String() string {
	if v.c == nil || v.c.GenerateIncludeFile == nil {
		return ""
	}
	return strconv.FormatBool(*v.c.GenerateIncludeFile)
}

func (v *includeValue) Set(s string) error {
	on, err := ParseSwitch(s)
	if err != nil {
		return err
	}
	v.c.GenerateIncludeFile = &on
	return nil
}

func (v *includeValue) Type() string {
	return "switch"
}

type noLineValue struct {
	c *Config
}

func (v *noLineValue) String() string {
	if v.c == nil {
		return "false"
	}
	return strconv.FormatBool(!v.c.EmitLineDirectives)
}

func (v *noLineValue) Set(s string) error {
	off, err := ParseSwitch(s)
	if err != nil {
		return err
	}
	v.c.EmitLineDirectives = !off
	return nil
}

func (v *noLineValue) Type() string {
	return "bool"
}
