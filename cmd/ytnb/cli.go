package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/mcp"
	"github.com/hpungsan/ytnb/internal/ops"
)

// envFactory builds the operation environment once flags have been applied
// to the configuration.
type envFactory func(cfg *config.Config) (ops.Env, error)

// newCLIApp creates the CLI application with all commands.
// Running it with a bare URL imports that video.
func newCLIApp(cfg *config.Config, newEnv envFactory) *cli.App {
	app := &cli.App{
		Name:      "ytnb",
		Usage:     "Turn YouTube videos into NotebookLM notebooks with generated artifacts",
		ArgsUsage: "<youtube-url>",
		Version:   Version,
		Flags:     importFlags(),
		Action:    importAction(cfg, newEnv),
		Commands: []*cli.Command{
			importCmd(cfg, newEnv),
			viewCmd(cfg, newEnv),
			listCmd(cfg, newEnv),
			reportCmd(cfg, newEnv),
			mcpCmd(cfg, newEnv),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// Flag groups

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "debug", Usage: "Verbose diagnostic logging on stderr", EnvVars: []string{"YTNB_DEBUG"}},
		&cli.BoolFlag{Name: "json", Usage: "Print the result as JSON (progress moves to stderr)"},
	}
}

func timeoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "call-timeout", Usage: "Seconds allowed for each notebooklm call", EnvVars: []string{"YTNB_CALL_TIMEOUT"}},
	}
}

func generationFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(artifact.All())+6)
	for _, k := range artifact.All() {
		spec := artifact.MustLookup(k)
		usage := "Request " + strings.ToLower(spec.DisplayName)
		if spec.DailyQuota {
			usage += " (daily limit)"
		}
		flags = append(flags, &cli.BoolFlag{Name: string(k), Usage: usage, Category: "Artifacts"})
	}
	return append(flags,
		&cli.BoolFlag{Name: "all", Usage: "Request every artifact kind", Category: "Artifacts"},
		&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Language code for localized artifacts", EnvVars: []string{"YTNB_LANGUAGE"}},
		&cli.Float64Flag{Name: "delay", Usage: "Seconds between the start of consecutive generation calls", EnvVars: []string{"YTNB_DELAY"}},
		&cli.BoolFlag{Name: "wait", Usage: "Wait for each artifact to finish generating"},
		&cli.BoolFlag{Name: "parallel", Usage: "Run independent artifact lanes concurrently", EnvVars: []string{"YTNB_PARALLEL"}},
	)
}

func importFlags() []cli.Flag {
	flags := generationFlags()
	flags = append(flags,
		&cli.IntFlag{Name: "source-timeout", Usage: "Seconds to wait for the video source to be processed", EnvVars: []string{"YTNB_SOURCE_TIMEOUT"}},
	)
	flags = append(flags, timeoutFlags()...)
	return append(flags, outputFlags()...)
}

// Commands

// importCmd creates the import command.
func importCmd(cfg *config.Config, newEnv envFactory) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create or reuse the notebook for a video and generate missing artifacts",
		ArgsUsage: "<youtube-url>",
		Flags:     importFlags(),
		Action:    importAction(cfg, newEnv),
	}
}

func importAction(cfg *config.Config, newEnv envFactory) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return outputError(errors.NewInvalidInput("expected a single YouTube URL"))
		}
		settings, kinds, err := generationArgs(c)
		if err != nil {
			return outputError(err)
		}
		env, err := prepare(c, cfg, newEnv)
		if err != nil {
			return outputError(err)
		}

		output, err := ops.Import(c.Context, env, ops.ImportInput{
			URL:                c.Args().First(),
			Kinds:              kinds,
			GenerationSettings: settings,
		})
		if err != nil {
			return outputError(err)
		}
		return finish(c, output)
	}
}

// viewCmd creates the view command.
func viewCmd(cfg *config.Config, newEnv envFactory) *cli.Command {
	flags := generationFlags()
	flags = append(flags, timeoutFlags()...)
	return &cli.Command{
		Name:      "view",
		Usage:     "Show a notebook's artifacts and generate requested missing ones",
		ArgsUsage: "<notebook-id-or-url>",
		Flags:     append(flags, outputFlags()...),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidInput("expected a notebook id or URL"))
			}
			settings, kinds, err := generationArgs(c)
			if err != nil {
				return outputError(err)
			}
			env, err := prepare(c, cfg, newEnv)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.View(c.Context, env, ops.ViewInput{
				Notebook:           c.Args().First(),
				Kinds:              kinds,
				GenerationSettings: settings,
			})
			if err != nil {
				return outputError(err)
			}
			return finish(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(cfg *config.Config, newEnv envFactory) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: ops.SortTitle, Usage: "Sort key: title|created|updated"},
		&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
		&cli.StringFlag{Name: "prefix", Usage: "Only notebooks whose title starts with this prefix"},
	}
	flags = append(flags, timeoutFlags()...)
	return &cli.Command{
		Name:  "list",
		Usage: "List NotebookLM notebooks",
		Flags: append(flags, outputFlags()...),
		Action: func(c *cli.Context) error {
			env, err := prepare(c, cfg, newEnv)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.List(c.Context, env.Client, ops.ListInput{
				Sort:   c.String("sort"),
				Desc:   c.Bool("desc"),
				Prefix: c.String("prefix"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(c.App.Writer, output)
			}

			w := c.App.Writer
			for _, item := range output.Items {
				created := "-"
				if !item.CreatedAt.IsZero() {
					created = item.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s  %s  %s\n", created, item.ID, item.Title)
			}
			fmt.Fprintf(w, "%d notebooks\n", output.Count)
			return nil
		},
	}
}

// reportCmd creates the report command.
func reportCmd(cfg *config.Config, newEnv envFactory) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Destination .md or .html file (default: ~/.ytnb/reports/<title>-<timestamp>.md)"},
		&cli.BoolFlag{Name: "html", Usage: "Render HTML when using the default path"},
	}
	flags = append(flags, timeoutFlags()...)
	return &cli.Command{
		Name:      "report",
		Usage:     "Download a notebook's report to a local file",
		ArgsUsage: "<notebook-id-or-url>",
		Flags:     append(flags, outputFlags()...),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidInput("expected a notebook id or URL"))
			}
			env, err := prepare(c, cfg, newEnv)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Report(c.Context, env, ops.ReportInput{
				Notebook: c.Args().First(),
				Path:     c.String("output"),
				HTML:     c.Bool("html"),
			})
			if err != nil {
				return outputError(err)
			}
			return finish(c, output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(cfg *config.Config, newEnv envFactory) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the notebook tools over MCP on stdio",
		Flags: append(timeoutFlags(), outputFlags()...),
		Action: func(c *cli.Context) error {
			env, err := prepare(c, cfg, newEnv)
			if err != nil {
				return outputError(err)
			}
			if err := mcp.Run(env, Version); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// generationArgs collects the artifact selection and generation settings.
func generationArgs(c *cli.Context) (ops.GenerationSettings, []artifact.Kind, error) {
	var names []string
	for _, k := range artifact.All() {
		if c.Bool(string(k)) {
			names = append(names, string(k))
		}
	}
	kinds, err := ops.ParseKinds(names, c.Bool("all"))
	if err != nil {
		return ops.GenerationSettings{}, nil, err
	}

	var seconds *float64
	if c.IsSet("delay") {
		v := c.Float64("delay")
		seconds = &v
	}
	delay, err := ops.DelayFromSeconds(seconds)
	if err != nil {
		return ops.GenerationSettings{}, nil, err
	}

	return ops.GenerationSettings{
		Language: c.String("language"),
		Delay:    delay,
		Wait:     c.Bool("wait"),
		Parallel: c.Bool("parallel"),
	}, kinds, nil
}

// prepare configures logging, applies flag overrides to a copy of cfg and
// builds the environment. Progress goes to stdout unless --json claims it.
func prepare(c *cli.Context, cfg *config.Config, newEnv envFactory) (ops.Env, error) {
	setupLogging(c.Bool("debug"))

	effective := *cfg
	if c.IsSet("source-timeout") {
		if c.Int("source-timeout") < 0 {
			return ops.Env{}, errors.NewInvalidInput("source-timeout must not be negative")
		}
		effective.SourceTimeoutSeconds = c.Int("source-timeout")
	}
	if c.IsSet("call-timeout") {
		if c.Int("call-timeout") <= 0 {
			return ops.Env{}, errors.NewInvalidInput("call-timeout must be positive")
		}
		effective.CallTimeoutSeconds = c.Int("call-timeout")
	}

	env, err := newEnv(&effective)
	if err != nil {
		return ops.Env{}, err
	}

	progress := c.App.Writer
	if c.Bool("json") {
		progress = c.App.ErrWriter
	}
	env.Reporter = ops.NewReporter(progress)
	return env, nil
}

// finish prints the result as JSON when requested; otherwise the progress
// lines already told the story.
func finish(c *cli.Context, v any) error {
	if c.Bool("json") {
		return outputJSON(c.App.Writer, v)
	}
	return nil
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if e, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// hoistFlags moves flags ahead of positional arguments so that
// `ytnb <url> --report` parses like `ytnb --report <url>`.
// Everything after a literal "--" stays positional.
func hoistFlags(app *cli.App, args []string) []string {
	if len(args) < 2 {
		return args
	}
	out := []string{args[0]}
	rest := args[1:]
	flagSet := app.Flags
	if cmd := findCommand(app, rest[0]); cmd != nil {
		out = append(out, rest[0])
		rest = rest[1:]
		flagSet = cmd.Flags
	} else if rest[0] == "help" || rest[0] == "h" {
		return args
	}
	takesValue := valueFlagNames(flagSet)

	var flags, positional []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			positional = append(positional, rest[i:]...)
			break
		}
		if len(arg) > 1 && strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if takesValue[arg] && i+1 < len(rest) {
				flags = append(flags, rest[i+1])
				i++
			}
			continue
		}
		positional = append(positional, arg)
	}

	out = append(out, flags...)
	return append(out, positional...)
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.HasName(name) {
			return cmd
		}
	}
	return nil
}

// valueFlagNames lists every spelling (-x and --x, aliases included) of the
// flags that take a separate value argument.
func valueFlagNames(flags []cli.Flag) map[string]bool {
	names := make(map[string]bool)
	for _, f := range flags {
		if vf, ok := f.(cli.DocGenerationFlag); !ok || !vf.TakesValue() {
			continue
		}
		for _, name := range f.Names() {
			names["-"+name] = true
			names["--"+name] = true
		}
	}
	return names
}
