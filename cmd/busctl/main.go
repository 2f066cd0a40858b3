package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to topology file (TOML)")
		list        = flag.Bool("list", false, "Print the assembled topology and exit")
		query       = flag.String("query", "", "Identity name to resolve")
		from        = flag.String("from", "", "Origin bus or service for -query (default: first bus)")
		findLevel   = flag.Int("level", -1, "Find the first reachable bus with this level")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose bus logging")
	)
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: busctl -config <topology.toml> -list")
		fmt.Fprintln(os.Stderr, "       busctl -config <topology.toml> -query <name> [-from <origin>]")
		fmt.Fprintln(os.Stderr, "       busctl -config <topology.toml> -level <n> [-from <origin>]")
		fmt.Fprintln(os.Stderr, "       busctl -config <topology.toml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		bus.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configFile, *query, *from, *findLevel, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, query, from string, findLevel int, listOnly bool) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	graph, err := BuildGraph(cfg)
	if err != nil {
		return err
	}
	defer graph.Close()

	fmt.Printf("Topology: %s\n", configFile)
	fmt.Printf("Buses: %d\n", len(cfg.Buses))
	fmt.Printf("Services: %d\n", len(cfg.Services))

	if listOnly || (query == "" && findLevel < 0) {
		fmt.Println()
		printTopology(cfg, graph)
		return nil
	}

	origin := graph.Bus(cfg.Buses[0].Name)
	originName := cfg.Buses[0].Name
	if from != "" {
		o := graph.Origin(from)
		if o == nil {
			return fmt.Errorf("unknown origin %q", from)
		}
		originName = from
		if query != "" {
			return runQuery(o, originName, query)
		}
		b, ok := o.(*bus.Bus)
		if !ok {
			return fmt.Errorf("origin %q is not a bus; -level needs a bus origin", from)
		}
		origin = b
	}

	if query != "" {
		return runQuery(origin, originName, query)
	}

	found := origin.FindFirstBusByLevel(findLevel)
	if found == nil {
		fmt.Printf("\nNo bus with level %d reachable from %q\n", findLevel, originName)
		return nil
	}
	fmt.Printf("\nFirst bus with level %d from %q: %s\n", findLevel, originName, describeBus(cfg, graph, found.Serial()))
	return nil
}

func runQuery(origin intfbus.Interface, originName, query string) error {
	id := iid.New(query)
	fmt.Printf("\nResolving %s (%s) from %q...\n", query, id, originName)

	got, err := origin.QueryInterface(id)
	if errors.IsNotResolved(err) {
		fmt.Println("Not resolved")
		return nil
	}
	if err != nil {
		return err
	}
	defer got.Unref()

	fmt.Printf("Resolved: %s\n", describeResolved(got))
	return nil
}

// describeResolved names a resolved object for display.
func describeResolved(got intfbus.Interface) string {
	type named interface{ Name() string }
	if n, ok := got.(named); ok {
		return fmt.Sprintf("service %q", n.Name())
	}
	if b, ok := got.(*bus.Bus); ok {
		return fmt.Sprintf("bus (level %d)", b.Level())
	}
	return fmt.Sprintf("%T", got)
}

func printTopology(cfg *Config, graph *Graph) {
	servicesByBus := make(map[string][]ServiceConfig)
	for _, sc := range cfg.Services {
		servicesByBus[sc.Bus] = append(servicesByBus[sc.Bus], sc)
	}

	for _, bc := range cfg.Buses {
		b := graph.Bus(bc.Name)
		fmt.Printf("%s (level %d): %d interfaces, %d buses, %d siblings\n",
			bc.Name, b.Level(), b.Interfaces(), b.ConnectedBuses(), b.Siblings())
		for _, sc := range servicesByBus[bc.Name] {
			fmt.Printf("  %s (order %d) -> %s\n", sc.Name, sc.Order, iid.New(sc.Name))
		}
		if len(bc.Connect) > 0 {
			fmt.Printf("  connects: %s\n", strings.Join(bc.Connect, ", "))
		}
	}
}

func describeBus(cfg *Config, graph *Graph, serial uint64) string {
	for _, bc := range cfg.Buses {
		if b := graph.Bus(bc.Name); b != nil && b.Serial() == serial {
			return fmt.Sprintf("%s (level %d)", bc.Name, b.Level())
		}
	}
	return fmt.Sprintf("serial %d", serial)
}
