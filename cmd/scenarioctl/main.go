// Command scenarioctl edits the scenario catalog of a running scenarioadmin
// server.
//
//	scenarioctl [-server URL] list
//	scenarioctl [-server URL] show [-query JSONPATH] KEY
//	scenarioctl [-server URL] save -file DOC.json [-key KEY]
//	scenarioctl [-server URL] delete [-yes] KEY
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/editor"
)

var errUsage = errors.New("usage: scenarioctl [-server URL] list | show [-query JSONPATH] KEY | save -file DOC.json [-key KEY] | delete [-yes] KEY")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "scenarioctl: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	session *editor.Session
	in      *bufio.Reader
	out     io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("scenarioctl", flag.ContinueOnError)
	server := fs.String("server", envOr("SCENARIOADMIN_URL", "http://localhost:8080"), "scenarioadmin base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	client := editor.NewClient(*server, &http.Client{Timeout: *timeout})
	c := &cli{
		session: editor.NewSession(client, nil),
		in:      bufio.NewReader(in),
		out:     out,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "list":
		return c.list(ctx)
	case "show":
		return c.show(ctx, rest)
	case "save":
		return c.save(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func (c *cli) list(ctx context.Context) error {
	keys, err := c.session.List(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.out, k)
	}
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	query := fs.String("query", "", "JSONPath expression to evaluate, e.g. $.messages[*].text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	if err := c.session.OpenEdit(ctx, fs.Arg(0)); err != nil {
		return err
	}
	defer c.session.Close()

	doc := c.session.Draft().Document()
	if *query == "" {
		return printJSON(c.out, doc)
	}
	result, err := editor.Query(doc, *query)
	if err != nil {
		return err
	}
	return printJSON(c.out, result)
}

func (c *cli) save(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	file := fs.String("file", "", "JSON document to save")
	key := fs.String("key", "", "existing key to update (default: derived from the name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" || fs.NArg() != 0 {
		return errUsage
	}

	doc, err := readDocument(*file)
	if err != nil {
		return err
	}

	if *key != "" {
		err = c.session.OpenEdit(ctx, *key)
	} else {
		err = c.session.OpenNew()
	}
	if err != nil {
		return err
	}
	defer c.session.Close()

	err = c.session.Edit(func(d *scenario.Draft) error {
		d.Name = doc.Name
		d.Messages = doc.Clone().Messages
		return nil
	})
	if err != nil {
		return err
	}

	saved := *key
	if saved == "" {
		if saved, err = scenario.KeyFromName(doc.Name); err != nil {
			return err
		}
	}
	if err := c.session.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", saved)
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	key := fs.Arg(0)

	if err := c.session.RequestDelete(key); err != nil {
		return err
	}
	if !*yes && !c.confirm(fmt.Sprintf("Delete %s? [y/N] ", key)) {
		c.session.CancelDelete()
		fmt.Fprintln(c.out, "cancelled")
		return nil
	}
	if err := c.session.ConfirmDelete(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted %s\n", key)
	return nil
}

func (c *cli) confirm(prompt string) bool {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func readDocument(path string) (*scenario.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc scenario.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
