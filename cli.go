package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

// projectConfig is the optional gwe.yaml at the project root. Flags override
// whatever it sets.
type projectConfig struct {
	Target   string `yaml:"target"`
	BuildDir string `yaml:"build_dir"`
}

func loadConfig() projectConfig {
	cfg := projectConfig{Target: "wat", BuildDir: "gwe_build"}
	data, err := os.ReadFile("gwe.yaml")
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring malformed gwe.yaml: %v\n", err)
		return projectConfig{Target: "wat", BuildDir: "gwe_build"}
	}
	if cfg.Target == "" {
		cfg.Target = "wat"
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = "gwe_build"
	}
	return cfg
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gwe",
		Usage: "compile gwe source to WebAssembly text",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print a stack trace on failure",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "compile a .gwe file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "target",
						Aliases: []string{"t"},
						Usage:   "output target: wat, wasm, or gwe",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file path",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "write the module to stdout instead of a file",
					},
					&cli.BoolFlag{
						Name:  "dump-ast",
						Usage: "print the parsed program before emitting",
					},
				},
				Action: buildAction,
			},
			{
				Name:      "fmt",
				Usage:     "print a .gwe file in canonical form",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "rewrite the file in place",
					},
				},
				Action: fmtAction,
			},
			{
				Name:      "check",
				Usage:     "parse a .gwe file and report errors",
				ArgsUsage: "<file>",
				Action:    checkAction,
			},
		},
	}
}

func sourceArg(c *cli.Context) (string, string, error) {
	if c.NArg() != 1 {
		return "", "", fmt.Errorf("expected exactly one file argument")
	}
	filename := c.Args().First()
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", err
	}
	return filename, string(data), nil
}

func buildAction(c *cli.Context) error {
	cfg := loadConfig()
	target := cfg.Target
	if c.String("target") != "" {
		target = c.String("target")
	}
	if target != "wat" && target != "wasm" && target != "gwe" {
		return fmt.Errorf("unknown target %q, expected wat, wasm, or gwe", target)
	}

	filename, source, err := sourceArg(c)
	if err != nil {
		return err
	}

	program, err := ParseProgram(source)
	if err != nil {
		return err
	}
	if c.Bool("dump-ast") {
		repr.Println(program)
	}

	if target == "gwe" {
		return writeFormatted(c, cfg, filename, program)
	}

	wat, err := EmitWAT(program)
	if err != nil {
		return err
	}

	if c.Bool("stdout") {
		fmt.Println(wat)
		return nil
	}

	watPath := c.String("output")
	base := strings.TrimSuffix(filepath.Base(filename), ".gwe")
	if watPath == "" {
		if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
			return err
		}
		watPath = filepath.Join(cfg.BuildDir, base+".wat")
	} else if target == "wasm" {
		// the named output is the .wasm; the .wat goes beside it
		watPath = strings.TrimSuffix(watPath, ".wasm") + ".wat"
	}
	if err := os.WriteFile(watPath, []byte(wat+"\n"), 0o644); err != nil {
		return err
	}

	if target == "wasm" {
		wasmPath := c.String("output")
		if wasmPath == "" {
			wasmPath = filepath.Join(cfg.BuildDir, base+".wasm")
		}
		cmd := exec.Command("wat2wasm", watPath, "-o", wasmPath)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("wat2wasm failed: %w", err)
		}
		fmt.Printf("wrote %s\n", wasmPath)
		return nil
	}

	fmt.Printf("wrote %s\n", watPath)
	return nil
}

// writeFormatted handles the gwe target: canonical source into the build
// directory instead of a WAT module.
func writeFormatted(c *cli.Context, cfg projectConfig, filename string, program *Program) error {
	formatted := Format(program) + "\n"
	if c.Bool("stdout") {
		fmt.Print(formatted)
		return nil
	}
	out := c.String("output")
	if out == "" {
		if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(filename), ".gwe")
		out = filepath.Join(cfg.BuildDir, base+".gwe")
	}
	if err := os.WriteFile(out, []byte(formatted), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func fmtAction(c *cli.Context) error {
	filename, source, err := sourceArg(c)
	if err != nil {
		return err
	}
	program, err := ParseProgram(source)
	if err != nil {
		return err
	}
	formatted := Format(program) + "\n"
	if c.Bool("write") {
		return os.WriteFile(filename, []byte(formatted), 0o644)
	}
	fmt.Print(formatted)
	return nil
}

func checkAction(c *cli.Context) error {
	filename, source, err := sourceArg(c)
	if err != nil {
		return err
	}
	if _, err := ParseProgram(source); err != nil {
		return err
	}
	fmt.Printf("%s: no errors found\n", filename)
	return nil
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		if hasTraceFlag(os.Args) {
			tracerr.PrintSourceColor(tracerr.Wrap(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func hasTraceFlag(args []string) bool {
	for _, a := range args {
		if a == "--trace" {
			return true
		}
	}
	return false
}
