package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collective"
	"github.com/unixpickle/collengine/team"
)

// runOptions holds the flags for the run command.
type runOptions struct {
	addrs     string
	rank      int
	root      int
	kind      string
	payload   int
	verbose   bool
	dialDelay time.Duration
}

// NewRunCommand builds the "run" subcommand: dial the team described by
// --addrs/--rank/--root, run one collective, and print the byte count it
// reported for this rank.
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Dial a team and run one collective operation",
		Long: `Dial every other rank's TCP address, form a team, and run a single
collective operation (broadcast, scatter, gather, allgather, alltoall,
fanin, or fanout) with a payload of dummy bytes.

Example:
  collectived run --addrs=10.0.0.2:9000,10.0.0.3:9000 --rank=0 --root=0 --kind=broadcast --payload=4096`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollective(opts)
		},
	}

	cmd.Flags().StringVar(&opts.addrs, "addrs", "", "comma-separated dial address for every OTHER rank, in ascending rank order")
	cmd.Flags().IntVar(&opts.rank, "rank", 0, "this process's rank in the team")
	cmd.Flags().IntVar(&opts.root, "root", 0, "root rank for root-centric collectives")
	cmd.Flags().StringVar(&opts.kind, "kind", "broadcast", "broadcast|scatter|gather|allgather|alltoall|fanin|fanout")
	cmd.Flags().IntVar(&opts.payload, "payload", 1024, "payload size in bytes (root's send buffer)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "enable debug-level logging")
	cmd.Flags().DurationVar(&opts.dialDelay, "dial-timeout", 10*time.Second, "overall dial timeout")

	return cmd
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func parseKind(s string) (collective.CollectiveType, error) {
	switch strings.ToLower(s) {
	case "broadcast":
		return collective.Broadcast, nil
	case "scatter":
		return collective.Scatter, nil
	case "gather":
		return collective.Gather, nil
	case "allgather":
		return collective.AllGather, nil
	case "alltoall":
		return collective.AllToAll, nil
	case "fanin":
		return collective.FanIn, nil
	case "fanout":
		return collective.FanOut, nil
	default:
		return 0, fmt.Errorf("unknown collective kind %q", s)
	}
}

func runCollective(opts *runOptions) error {
	log := newLogger(opts.verbose)
	defer log.Sync()

	kind, err := parseKind(opts.kind)
	if err != nil {
		return err
	}

	var addrs []string
	if opts.addrs != "" {
		addrs = strings.Split(opts.addrs, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.dialDelay)
	defer cancel()

	t, err := team.Dial(ctx, addrs, opts.rank, opts.root, log)
	if err != nil {
		return fmt.Errorf("form team: %w", err)
	}
	defer t.Close()

	op, err := t.New(kind)
	if err != nil {
		return err
	}

	isRoot := opts.rank == opts.root

	var n int
	switch kind {
	case collective.FanIn:
		if isRoot {
			if _, err := op.Probe(true); err != nil {
				return fmt.Errorf("probe: %w", err)
			}
			buf := make([]byte, opts.payload)
			n, err = op.Receive(buf)
		} else {
			buf := make([]byte, opts.payload)
			n, err = op.Send(buf)
		}
	case collective.FanOut:
		if isRoot {
			buf := make([]byte, opts.payload)
			n, err = op.Send(buf)
		} else {
			if _, perr := op.Probe(true); perr != nil {
				return fmt.Errorf("probe: %w", perr)
			}
			buf := make([]byte, opts.payload)
			n, err = op.Receive(buf)
		}
	default:
		sendbuf := make([]byte, 0)
		if isRoot {
			sendbuf = make([]byte, opts.payload)
		}
		recvbuf := make([]byte, opts.payload*t.Size())
		n, err = op.SendRecv(sendbuf, len(sendbuf), recvbuf, len(recvbuf), 1)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	log.Infof("rank %d: %s completed, %d bytes reported", opts.rank, kind, n)
	fmt.Println(strconv.Itoa(n))
	return nil
}
