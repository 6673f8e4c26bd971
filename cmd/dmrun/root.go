package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/catalog"
	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/executor"
	"github.com/cory-johannsen/dmengine/internal/game/condition"
	"github.com/cory-johannsen/dmengine/internal/game/dice"
	"github.com/cory-johannsen/dmengine/internal/game/session"
	"github.com/cory-johannsen/dmengine/internal/observability"
	"github.com/cory-johannsen/dmengine/internal/plugin"
	"github.com/cory-johannsen/dmengine/internal/scripting"
	"github.com/cory-johannsen/dmengine/internal/snapshot"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dmrun",
		Short:         "Replay DM directive batches",
		Long:          `dmrun applies directive batches to a YAML state fixture and prints the outcome, or submits them to a running dmserver.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExecCmd(), newSnapshotCmd(), newRemoteCmd())
	return root
}

type execOptions struct {
	statePath    string
	savePath     string
	faces        string
	monstersPath string
	conditions   string
	pluginsDir   string
	quiet        bool
	verbose      bool
}

func newExecCmd() *cobra.Command {
	var opts execOptions
	cmd := &cobra.Command{
		Use:   "exec [batch.json]",
		Short: "Apply a directive batch to a state fixture",
		Long: `Apply a JSON directive batch (an array of directives, or an object with a
"directives" array) to a state fixture and print the result and the snapshot.

  Example: dmrun exec --state cave.yaml --faces 15,4 ambush.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.statePath, "state", "", "YAML state fixture; empty starts from a blank state")
	cmd.Flags().StringVar(&opts.savePath, "save", "", "write the resulting state as YAML to this path")
	cmd.Flags().StringVar(&opts.faces, "faces", "", "comma-separated die faces to roll in order, cycling when exhausted")
	cmd.Flags().StringVar(&opts.monstersPath, "monsters", "", "YAML monster catalog")
	cmd.Flags().StringVar(&opts.conditions, "conditions", "", "directory of extra condition YAML")
	cmd.Flags().StringVar(&opts.pluginsDir, "plugins", "", "directory of Lua plugins to load")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "omit the snapshot")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log rolls and plugin activity to stderr")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [state.yaml]",
		Short: "Print the snapshot of a state fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := loadState(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), snapshot.Build(st))
			return err
		},
	}
}

func loadState(path string) (*session.State, error) {
	if path == "" {
		return session.New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	defer f.Close()
	return session.LoadYAML(f)
}

// readBatch accepts either a bare JSON array or {"directives": [...]}.
func readBatch(path string) ([]directive.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}
	data = bytes.TrimSpace(data)
	var raws []directive.Raw
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &raws)
	} else {
		var wrapped struct {
			Directives []directive.Raw `json:"directives"`
		}
		err = json.Unmarshal(data, &wrapped)
		raws = wrapped.Directives
	}
	if err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	return raws, nil
}

func parseFaces(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	faces := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid die face %q", p)
		}
		faces[i] = n
	}
	return faces, nil
}

// captureQueue keeps every message the executor releases.
type captureQueue struct{ msgs []broadcast.Message }

func (q *captureQueue) Enqueue(msgs ...broadcast.Message) int {
	q.msgs = append(q.msgs, msgs...)
	return 0
}

// printChat writes chat lines as they are produced.
type printChat struct{ w io.Writer }

func (p printChat) AddMessage(sender, content string) {
	fmt.Fprintf(p.w, "[%s] %s\n", sender, content)
}

func runExec(ctx context.Context, out io.Writer, batchPath string, opts execOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := loadState(opts.statePath)
	if err != nil {
		return err
	}
	raws, err := readBatch(batchPath)
	if err != nil {
		return err
	}
	faces, err := parseFaces(opts.faces)
	if err != nil {
		return err
	}
	var src dice.Source = dice.NewCryptoSource()
	if len(faces) > 0 {
		src = dice.NewFixedSource(faces...)
	}

	logger := zap.NewNop()
	if opts.verbose {
		logger, err = observability.NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}, "dmrun")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}
	roller := dice.NewRoller(src, logger)
	queue := &captureQueue{}
	chat := printChat{w: out}

	host, err := plugin.NewHost(plugin.HostConfig{
		Notifier: notifyPrinter{w: out},
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer host.UnloadAll()
	if opts.pluginsDir != "" {
		ids, err := host.LoadDir(ctx, scripting.NewLoader(0, logger), opts.pluginsDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "plugins: %s\n", strings.Join(ids, ", "))
	}

	var monsters *catalog.Lazy
	if opts.monstersPath != "" {
		monsters = catalog.NewLazy(catalog.File(opts.monstersPath))
	}

	conds := condition.DefaultRegistry()
	if opts.conditions != "" {
		if conds, err = condition.LoadDirectory(opts.conditions); err != nil {
			return err
		}
	}

	exec := executor.New(executor.Config{}, executor.Deps{
		Store:      session.NewStore(st),
		Roller:     roller,
		Bus:        host.Bus,
		Actions:    host.Actions,
		Queue:      queue,
		Chat:       chat,
		Catalog:    monsters,
		Conditions: conds,
		Logger:     logger,
		Now:        time.Now,
	})
	res := exec.Execute(ctx, raws, true)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	for _, m := range queue.msgs {
		fmt.Fprintf(out, "broadcast: %s\n", m.Channel)
	}
	if !opts.quiet {
		fmt.Fprint(out, snapshot.Build(st))
	}
	if opts.savePath != "" {
		data, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("encoding state: %w", err)
		}
		if err := os.WriteFile(opts.savePath, data, 0o644); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
	}
	return nil
}

type notifyPrinter struct{ w io.Writer }

func (n notifyPrinter) Notify(pluginID, message string) {
	fmt.Fprintf(n.w, "[%s] %s\n", pluginID, message)
}

func (n notifyPrinter) PlaySound(pluginID, sound string) {
	fmt.Fprintf(n.w, "[%s] plays %s\n", pluginID, sound)
}
