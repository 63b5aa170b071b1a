package mfcli

import (
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

var CommonOpts struct {
	Console bool
	Dry     bool
	Env     string
	Region  string
	Metrics bool

	HTTPTimeout time.Duration
}

var ConsoleFlag = cli.BoolFlag{
	Name:        "console",
	Usage:       "whether to run in console mode or lambda mode",
	Value:       false,
	EnvVars:     []string{"CONSOLE"},
	Destination: &CommonOpts.Console,
}
var DryFlag = cli.BoolFlag{
	Name:        "dry",
	Usage:       "compose and log the message without dispatching or persisting anything",
	Value:       false,
	EnvVars:     []string{"DRY"},
	Destination: &CommonOpts.Dry,
}
var EnvFlag = cli.StringFlag{
	Name:        "env",
	Usage:       "environment",
	Value:       "local",
	EnvVars:     []string{"ENV"},
	Destination: &CommonOpts.Env,
}
var RegionFlag = cli.StringFlag{
	Name:        "region",
	Usage:       "AWS region for dynamodb, s3, secrets manager and cloudwatch",
	Value:       "ap-northeast-2",
	EnvVars:     []string{"AWS_REGION"},
	Destination: &CommonOpts.Region,
}
var MetricsFlag = cli.BoolFlag{
	Name:        "metrics",
	Usage:       "publish run metrics to cloudwatch",
	Value:       false,
	EnvVars:     []string{"METRICS"},
	Destination: &CommonOpts.Metrics,
}

var HTTPTimeoutFlag = cli.DurationFlag{
	Name:        "http-timeout",
	Usage:       "timeout applied to every outbound http call",
	Value:       30 * time.Second,
	EnvVars:     []string{"HTTP_TIMEOUT"},
	Destination: &CommonOpts.HTTPTimeout,
}

var CommonFlags = []cli.Flag{
	&ConsoleFlag,
	&DryFlag,
	&EnvFlag,
	&RegionFlag,
	&MetricsFlag,
	&HTTPTimeoutFlag,
}

// StringFlag builds a string flag whose environment variable is the upper
// snake case form of name. An optional default may be supplied.
func StringFlag(name, usage string, destination *string, value ...string) *cli.StringFlag {
	f := &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
	if len(value) > 0 {
		f.Value = value[0]
	}
	return f
}

// StringFlagEnv is StringFlag with explicit environment variable names, for
// options whose variable names predate the flag naming scheme.
func StringFlagEnv(name, usage string, destination *string, envVars []string, value ...string) *cli.StringFlag {
	f := StringFlag(name, usage, destination, value...)
	f.EnvVars = envVars
	return f
}

func BoolFlag(name, usage string, destination *bool, value ...bool) *cli.BoolFlag {
	f := &cli.BoolFlag{
		Name:        name,
		Usage:       usage,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
	if len(value) > 0 {
		f.Value = value[0]
	}
	return f
}

func DurationFlag(name, usage string, destination *time.Duration, value time.Duration) *cli.DurationFlag {
	return &cli.DurationFlag{
		Name:        name,
		Usage:       usage,
		Value:       value,
		EnvVars:     []string{EnvVar(name)},
		Destination: destination,
	}
}

// EnvVar converts a flag name such as "state-table" into STATE_TABLE.
func EnvVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
