package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	markup "github.com/goliatone/go-markup"
)

// CLI is the root command line.
type CLI struct {
	Config  string `short:"c" help:"YAML configuration file; defaults apply when empty" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging through go-logger"`

	Post      PostCmd      `cmd:"" help:"Render a forum post to HTML"`
	Wiki      WikiCmd      `cmd:"" help:"Render a wiki page to HTML"`
	Meta      MetaCmd      `cmd:"" help:"Print the meta description of a post or wiki page"`
	Referrals ReferralsCmd `cmd:"" help:"List the internal pages a wiki page links to"`
	Video     VideoCmd     `cmd:"" help:"Print the embed markup for a video URL"`
	Title     TitleCmd     `cmd:"" help:"Store an entity title in the sqlite title store"`
}

// Env carries the process streams and the engine into subcommands.
type Env struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Engine *markup.Engine
}

// InputFlags selects where source text is read from.
type InputFlags struct {
	Input string `short:"i" help:"Input file; '-' reads stdin" default:"-"`
}

func (f InputFlags) read(env *Env) (string, error) {
	if f.Input == "" || f.Input == "-" {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(f.Input)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// PostFlags carries the per-post syntax switches.
type PostFlags struct {
	BBCode   bool   `name:"bbcode" help:"Interpret BBCode tags" default:"true" negatable:""`
	HTML     bool   `name:"html" help:"Interpret whitelisted HTML tags"`
	SourceID string `name:"source-id" help:"Post id recorded in log entries"`
}

// PostCmd implements 'markup post'.
type PostCmd struct {
	InputFlags
	PostFlags
}

func (c *PostCmd) Run(env *Env) error {
	source, err := c.read(env)
	if err != nil {
		return err
	}
	return env.Engine.ExecutePost(env.Ctx, markup.RenderPostCommand{
		Source:       source,
		SourceID:     c.SourceID,
		EnableBBCode: c.BBCode,
		EnableHTML:   c.HTML,
		Output:       markup.OutputHTML,
		Callback:     printText(env.Stdout),
	})
}

// WikiCmd implements 'markup wiki'.
type WikiCmd struct {
	InputFlags
}

func (c *WikiCmd) Run(env *Env) error {
	source, err := c.read(env)
	if err != nil {
		return err
	}
	return env.Engine.ExecuteWiki(env.Ctx, markup.RenderWikiCommand{
		Source:   source,
		Output:   markup.OutputHTML,
		Callback: printText(env.Stdout),
	})
}

// MetaCmd implements 'markup meta'.
type MetaCmd struct {
	InputFlags
	PostFlags
	Surface string `help:"Source syntax" enum:"post,wiki" default:"post"`
}

func (c *MetaCmd) Run(env *Env) error {
	source, err := c.read(env)
	if err != nil {
		return err
	}
	if c.Surface == "wiki" {
		return env.Engine.ExecuteWiki(env.Ctx, markup.RenderWikiCommand{
			Source:   source,
			Output:   markup.OutputMeta,
			Callback: printText(env.Stdout),
		})
	}
	return env.Engine.ExecutePost(env.Ctx, markup.RenderPostCommand{
		Source:       source,
		SourceID:     c.SourceID,
		EnableBBCode: c.BBCode,
		EnableHTML:   c.HTML,
		Output:       markup.OutputMeta,
		Callback:     printText(env.Stdout),
	})
}

// ReferralsCmd implements 'markup referrals'.
type ReferralsCmd struct {
	InputFlags
	JSON bool `help:"Print one JSON object per referral"`
}

func (c *ReferralsCmd) Run(env *Env) error {
	source, err := c.read(env)
	if err != nil {
		return err
	}
	var writeErr error
	err = env.Engine.ExecuteWiki(env.Ctx, markup.RenderWikiCommand{
		Source: source,
		Output: markup.OutputReferrals,
		Callback: func(r markup.CommandResult) {
			enc := json.NewEncoder(env.Stdout)
			for _, ref := range r.Referrals {
				if c.JSON {
					writeErr = errors.Join(writeErr, enc.Encode(ref))
					continue
				}
				_, werr := fmt.Fprintf(env.Stdout, "%s\t%s\t%s\n", ref.Page, ref.Href, ref.Excerpt)
				writeErr = errors.Join(writeErr, werr)
			}
		},
	})
	if err != nil {
		return err
	}
	return writeErr
}

// VideoCmd implements 'markup video'.
type VideoCmd struct {
	URL    string `arg:"" help:"Video page URL"`
	Width  int    `help:"Player width"`
	Height int    `help:"Player height"`
}

func (c *VideoCmd) Run(env *Env) error {
	embed, ok := env.Engine.EmbedVideo(c.URL, positive(c.Width), positive(c.Height))
	if !ok {
		return fmt.Errorf("no embed for %s", c.URL)
	}
	_, err := fmt.Fprintln(env.Stdout, embed)
	return err
}

// TitleCmd implements 'markup title'.
type TitleCmd struct {
	Kind  string `arg:"" help:"Entity kind" enum:"movie,submission,game,gamegroup"`
	ID    int    `arg:"" help:"Entity id"`
	Title string `arg:"" help:"Display title"`
}

func (c *TitleCmd) Run(env *Env) error {
	return env.Engine.StoreTitle(env.Ctx, c.Kind, c.ID, c.Title)
}

func printText(w io.Writer) func(markup.CommandResult) {
	return func(r markup.CommandResult) {
		text := r.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, _ = io.WriteString(w, text)
	}
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("markup"),
		kong.Description("Render forum posts and wiki pages."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := markup.DefaultConfig()
	if cli.Config != "" {
		if cfg, err = markup.LoadConfig(cli.Config); err != nil {
			return err
		}
	}
	if cli.Verbose {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Level = "debug"
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "console"
		}
	}
	engine, err := markup.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	return kctx.Run(&Env{Ctx: ctx, Stdin: stdin, Stdout: stdout, Engine: engine})
}
