// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command rex runs a program over JSON-lines records.
//
// Records are read from the standard input (or --input) and written to the
// standard output after the program has been run over them:
//
//	rex -e 'event.digest = md5(event.message)' < records.jsonl
//
// Flags that are not set on the command line take their value from REX_*
// environment variables, e.g. REX_WORKERS for --workers. Variables can also
// be defined in a .env file (see --env).
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/gx-org/rex/api"
	"github.com/gx-org/rex/api/options"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	programFile = flag.String("program", "", "file containing the program to run")
	source      = flag.String("e", "", "source of the program to run, instead of --program")
	input       = flag.String("input", "", "JSON-lines file to process; standard input if empty")
	nativeCalls = flag.Bool("native", false, "call library functions through their native entry points")
	workers     = flag.Int("workers", runtime.NumCPU(), "number of records processed concurrently")
	envFile     = flag.String("env", ".env", "file defining REX_* variables")
	verbose     = flag.Bool("v", false, "log debug messages on the standard error")
)

const envPrefix = "REX_"

// envName returns the name of the environment variable of a flag.
func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnv sets the flags not given on the command line from environment variables.
// Variables of the process take precedence over variables read from a file.
func applyEnv(fs *flag.FlagSet, fileEnv map[string]string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	var errs []error
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] {
			return
		}
		name := envName(f.Name)
		val, ok := os.LookupEnv(name)
		if !ok {
			val, ok = fileEnv[name]
		}
		if !ok {
			return
		}
		if err := fs.Set(f.Name, val); err != nil {
			errs = append(errs, errors.Wrapf(err, "invalid value %q for %s", val, name))
		}
	})
	return multierr.Combine(errs...)
}

func readEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return env, err
}

// configure reads the file named by --env, or by REX_ENV if --env is not
// given, then sets the flags not given on the command line.
func configure(fs *flag.FlagSet) error {
	envFlag := fs.Lookup("env")
	set := false
	fs.Visit(func(f *flag.Flag) {
		set = set || f == envFlag
	})
	if val, ok := os.LookupEnv(envName(envFlag.Name)); ok && !set {
		if err := fs.Set(envFlag.Name, val); err != nil {
			return err
		}
	}
	fileEnv, err := readEnvFile(envFlag.Value.String())
	if err != nil {
		return err
	}
	return applyEnv(fs, fileEnv)
}

func readSource() (string, error) {
	if *source != "" {
		return *source, nil
	}
	if *programFile == "" {
		return "", errors.New("no program: please use --program or -e")
	}
	src, err := os.ReadFile(*programFile)
	if err != nil {
		return "", errors.Wrap(err, "cannot read program")
	}
	return string(src), nil
}

func run() error {
	if err := configure(flag.CommandLine); err != nil {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	src, err := readSource()
	if err != nil {
		return err
	}
	prog, err := api.Compile(src,
		options.WithLogger(logger),
		options.WithNative(*nativeCalls),
	)
	if err != nil {
		return errors.New(fmterr.Render(err, src))
	}
	defer prog.Close()

	var r io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	logger.Debug("processing records", "workers", *workers, "native", *nativeCalls, "type", prog.TypeDef().String())
	return process(prog, r, os.Stdout, *workers)
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
