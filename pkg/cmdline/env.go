package cmdline

import "github.com/spf13/pflag"

// EnvHandler applies a value sourced from the environment to flag.
type EnvHandler func(flag *pflag.Flag, value string) error

// EnvSetValue is the default EnvHandler: it behaves like passing
// --flag-name=value on the command line.
func EnvSetValue(flag *pflag.Flag, value string) error {
	if err := flag.Value.Set(value); err != nil {
		return err
	}
	flag.Changed = true
	return nil
}
