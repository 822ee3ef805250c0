package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/steem"
	"github.com/steemkit/steembridge/storage"
)

// Console executes interactive commands against one connected client.
type Console struct {
	ctx      context.Context
	client   *steem.Client
	store    *storage.Storage
	endpoint string
	format   outputFormat
	out      io.Writer

	exitOnce sync.Once
	exitCh   chan struct{}
}

func NewConsole(ctx context.Context, client *steem.Client, store *storage.Storage, endpoint string, format outputFormat, out io.Writer) *Console {
	return &Console{
		ctx:      ctx,
		client:   client,
		store:    store,
		endpoint: endpoint,
		format:   format,
		out:      out,
		exitCh:   make(chan struct{}),
	}
}

// Run reads commands until exit, ctx is done or the session ends. Without a
// terminal on stdin, commands are read line by line.
func (c *Console) Run(ctx context.Context, disconnected <-chan struct{}) error {
	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return c.runScript(os.Stdin)
	}

	initialState, _ := term.GetState(stdinFd)
	handleExit := func() {
		if initialState != nil {
			term.Restore(stdinFd, initialState)
		}
		exec.Command("stty", "sane").Run()
	}

	options := append(getStyleOptions(),
		prompt.OptionPrefix(">>> "),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn:  func(*prompt.Buffer) { c.exit() },
		}),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn:  func(*prompt.Buffer) {},
		}),
	)
	p := prompt.New(c.Execute, c.Complete, options...)

	promptExitCh := make(chan struct{})
	go func() {
		p.Run()
		close(promptExitCh)
	}()

	select {
	case <-ctx.Done():
	case <-disconnected:
		fmt.Fprintln(c.out, "Node disconnected.")
	case <-c.Wait():
	case <-promptExitCh:
	}
	handleExit()
	fmt.Fprintln(c.out, "Exiting steembridge console.")
	return nil
}

func (c *Console) runScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.Execute(scanner.Text())
		select {
		case <-c.Wait():
			return nil
		default:
		}
	}
	return scanner.Err()
}

func (c *Console) Complete(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(c.complete(d.TextBeforeCursor()), d.GetWordBeforeCursor(), true)
}

func (c *Console) complete(text string) []prompt.Suggest {
	args := strings.Split(text, " ")

	if len(args) < 2 {
		suggestions := []prompt.Suggest{
			{Text: "apis", Description: "Show the sub-APIs published by the node"},
			{Text: "save", Description: "Store the current capability set as a snapshot"},
			{Text: "history", Description: "List stored snapshots of this endpoint"},
			{Text: "forget", Description: "Delete the stored snapshots of this endpoint"},
			{Text: "login", Description: "Log in again with the configured credentials"},
			{Text: "status", Description: "Show whether the session is open"},
			{Text: "call", Description: "Call <api> <method> [json params...]"},
			{Text: "output", Description: "Switch the output format"},
			{Text: "exit", Description: "Exit the console"},
		}
		return append(suggestions, c.methodSuggestions("")...)
	}

	switch args[0] {
	case "output":
		if len(args) == 2 {
			return []prompt.Suggest{
				{Text: string(outputTable)},
				{Text: string(outputJSON)},
				{Text: string(outputYAML)},
			}
		}
	case "call":
		switch len(args) {
		case 2:
			apis := c.client.Capabilities().Available()
			s := make([]prompt.Suggest, 0, len(apis))
			for _, api := range apis {
				s = append(s, prompt.Suggest{Text: string(api)})
			}
			return s
		case 3:
			return c.methodSuggestions(rpc.SubAPI(args[1]))
		}
	}
	return nil
}

// methodSuggestions lists the catalogued methods of api, or of every
// available sub-API when api is empty.
func (c *Console) methodSuggestions(api rpc.SubAPI) []prompt.Suggest {
	apis := []rpc.SubAPI{api}
	if api == "" {
		apis = c.client.Capabilities().Available()
	}

	var s []prompt.Suggest
	for _, a := range apis {
		for _, m := range rpc.MethodsOf(a) {
			s = append(s, prompt.Suggest{Text: string(m), Description: string(a)})
		}
	}
	return s
}

func (c *Console) Execute(s string) {
	args := strings.Fields(s)
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "apis":
		if err := renderCapabilities(c.out, c.format, c.endpoint, c.client.Capabilities()); err != nil {
			fmt.Fprintf(c.out, "Failed to render capabilities: %s\n", err.Error())
		}
	case "save":
		snapshot, err := c.store.SaveSnapshot(c.endpoint, c.client.Capabilities())
		if err != nil {
			fmt.Fprintf(c.out, "Failed to save snapshot: %s\n", err.Error())
			return
		}
		fmt.Fprintf(c.out, "Snapshot %d saved.\n", snapshot.ID)
	case "history":
		snapshots, err := c.store.GetSnapshots(c.endpoint, defaultHistoryLimit)
		if err != nil {
			fmt.Fprintf(c.out, "Failed to list snapshots: %s\n", err.Error())
			return
		}
		if err := renderSnapshots(c.out, c.format, snapshots); err != nil {
			fmt.Fprintf(c.out, "Failed to render snapshots: %s\n", err.Error())
		}
	case "forget":
		removed, err := c.store.DeleteSnapshots(c.endpoint)
		if err != nil {
			fmt.Fprintf(c.out, "Failed to delete snapshots: %s\n", err.Error())
			return
		}
		fmt.Fprintf(c.out, "Removed %d snapshot(s).\n", removed)
	case "login":
		ok, err := c.client.Login(c.ctx)
		if err != nil {
			fmt.Fprintf(c.out, "Login failed (%s)\n", describeError(err))
			return
		}
		if ok {
			fmt.Fprintln(c.out, "Login accepted.")
		} else {
			fmt.Fprintln(c.out, "Login rejected.")
		}
	case "status":
		if c.client.IsConnected() {
			fmt.Fprintf(c.out, "Connected to %s.\n", c.endpoint)
		} else {
			fmt.Fprintf(c.out, "Not connected to %s.\n", c.endpoint)
		}
	case "output":
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: output <table|json|yaml>")
			return
		}
		format, err := parseOutputFormat(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "%s\n", err.Error())
			return
		}
		c.format = format
	case "call":
		if len(args) < 3 {
			fmt.Fprintln(c.out, "Usage: call <api> <method> [json params...]")
			return
		}
		c.call(rpc.SubAPI(args[1]), rpc.Method(args[2]), args[3:])
	case "exit":
		c.exit()
	default:
		method := rpc.Method(args[0])
		api, ok := method.API()
		if !ok {
			fmt.Fprintf(c.out, "Unknown command: %s\n", s)
			return
		}
		c.call(api, method, args[1:])
	}
}

func (c *Console) call(api rpc.SubAPI, method rpc.Method, args []string) {
	result, err := rpc.InvokeRaw(c.ctx, c.client, api, method, parseParams(args)...)
	if err != nil {
		fmt.Fprintf(c.out, "Call failed (%s)\n", describeError(err))
		return
	}
	if err := renderResult(c.out, c.format, result); err != nil {
		fmt.Fprintf(c.out, "Failed to render result: %s\n", err.Error())
	}
}

func (c *Console) Wait() <-chan struct{} {
	return c.exitCh
}

func (c *Console) exit() {
	c.exitOnce.Do(func() { close(c.exitCh) })
}

func getStyleOptions() []prompt.Option {
	return []prompt.Option{
		prompt.OptionTitle("steembridge console"),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionPreviewSuggestionTextColor(prompt.Cyan),

		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSuggestionBGColor(prompt.DarkBlue),

		prompt.OptionDescriptionTextColor(prompt.Black),
		prompt.OptionDescriptionBGColor(prompt.Yellow),

		prompt.OptionSelectedSuggestionTextColor(prompt.Black),
		prompt.OptionSelectedSuggestionBGColor(prompt.Yellow),

		prompt.OptionSelectedDescriptionTextColor(prompt.White),
		prompt.OptionSelectedDescriptionBGColor(prompt.DarkBlue),
	}
}
