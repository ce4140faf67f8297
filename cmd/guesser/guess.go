package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/guesser"
	"github.com/goliatone/go-guesser/pkg/render"
	"github.com/goliatone/go-guesser/pkg/renderers/html"
	"github.com/goliatone/go-guesser/pkg/renderers/jsontree"
	"github.com/goliatone/go-guesser/pkg/resource"
)

type guessOptions struct {
	view        string
	id          string
	format      string
	output      string
	interactive bool
	perPage     int
}

func (a *app) guessCommand() *cobra.Command {
	opts := guessOptions{}
	cmd := &cobra.Command{
		Use:   "guess [resource] [id]",
		Short: "Print the guessed view for one resource",
		Long: `Fetch a sample of records for a resource and print the guessed view.
Show and Edit views sample one record (the first one when no id is given);
List views sample a page of records.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGuess(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.view, "view", "show", "View to guess (show, edit, list)")
	flags.StringVar(&opts.id, "id", "", "Record id for show and edit views")
	flags.StringVar(&opts.format, "format", "snippet", "Output format (snippet, html, json)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (stdout if empty)")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the resource, view and id")
	flags.IntVar(&opts.perPage, "per-page", 0, "Records sampled by list views")
	_ = a.viper.BindPFlag(keyPerPage, flags.Lookup("per-page"))
	return cmd
}

func (a *app) runGuess(cmd *cobra.Command, args []string, opts guessOptions) error {
	ctx := cmd.Context()
	logger, err := newLogger(a.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	loader := newSourceLoader()
	registry, err := loadResources(ctx, loader, a.cfg)
	if err != nil {
		return err
	}
	provider, closeProvider, err := openProvider(ctx, loader, a.cfg, registry, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && opts.interactive {
		if name, err = a.prompter.Select(ctx, "Resource", resourceNames(ctx, provider, registry), ""); err != nil {
			return err
		}
	}
	if name == "" {
		return errors.New("a resource is required")
	}

	if opts.interactive && !cmd.Flags().Changed("view") {
		options := make([]string, 0, 3)
		for _, kind := range guesser.ViewKinds() {
			options = append(options, kind.String())
		}
		if opts.view, err = a.prompter.Select(ctx, "View", options, opts.view); err != nil {
			return err
		}
	}
	kind, err := guesser.ParseViewKind(opts.view)
	if err != nil {
		return err
	}

	id := opts.id
	if len(args) > 1 {
		id = args[1]
	}
	if id == "" && !kind.FetchesList() {
		fallback, err := firstID(ctx, provider, registry, name)
		if err != nil {
			return err
		}
		id = fallback
		if opts.interactive {
			if id, err = a.prompter.Input(ctx, "Record id", fallback); err != nil {
				return err
			}
		}
	}

	g, err := guesser.New(kind,
		guesser.WithResources(registry),
		guesser.WithLogger(logger),
		guesser.WithImportPackage(a.cfg.ImportPackage),
		guesser.WithProduction(a.cfg.production()),
	)
	if err != nil {
		return err
	}
	defer g.Close()
	g.SetResource(name)

	applied, err := g.Load(ctx, provider, guesser.Query{
		ID:   id,
		List: dataprovider.ListParams{PerPage: a.viper.GetInt(keyPerPage)},
	})
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("no records to guess %s from", name)
	}

	body, err := guessOutput(ctx, g, opts.format, name, id)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), opts.output, body)
}

func guessOutput(ctx context.Context, g *guesser.Guesser, format, name, id string) ([]byte, error) {
	snippet, snippetErr := g.Snippet()
	if snippetErr != nil && strings.EqualFold(strings.TrimSpace(format), render.FormatSnippet) {
		return nil, snippetErr
	}

	htmlRenderer, err := html.New(html.WithSnippet(snippetErr == nil))
	if err != nil {
		return nil, err
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(
		render.SnippetRenderer{},
		htmlRenderer,
		jsontree.New(jsontree.WithIndent("  ")),
	)

	root, _ := g.Node()
	records := g.Sample()
	title := g.Kind().Component() + " " + name
	if id != "" && !g.Kind().FetchesList() {
		title += " #" + id
	}
	body, contentType, err := renderers.RenderPage(ctx, format, render.Page{
		View:     g.Kind().String(),
		Resource: name,
		Title:    title,
		Root:     root,
		Records:  records,
		Total:    len(records),
		Snippet:  snippet,
	})
	if errors.Is(err, render.ErrRendererNotFound) {
		return nil, fmt.Errorf("unsupported format %q: %w", format, err)
	}
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(contentType, "text/plain") {
		body = append(body, '\n')
	}
	return body, nil
}

// firstID returns the identifier of the first record of name.
func firstID(ctx context.Context, provider dataprovider.Provider, registry *resource.Registry, name string) (string, error) {
	result, err := provider.GetList(ctx, name, dataprovider.ListParams{PerPage: 1})
	if err != nil {
		return "", err
	}
	if len(result.Records) == 0 {
		return "", fmt.Errorf("no records to guess %s from", name)
	}
	value, ok := result.Records[0].Get(registry.IdentifierField(name))
	if !ok || value == nil {
		return "", fmt.Errorf("first %s record has no %q field", name, registry.IdentifierField(name))
	}
	return cast.ToString(value), nil
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
