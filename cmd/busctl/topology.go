package main

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/bus"
	"github.com/wippyai/intf-bus/handle"
	"github.com/wippyai/intf-bus/iid"
	"github.com/wippyai/intf-bus/object"
)

// Config describes a bus topology to assemble:
//
//	[[bus]]
//	name = "core"
//	level = 0
//	connect = ["plugins"]
//
//	[[bus]]
//	name = "plugins"
//	level = 1
//
//	[[service]]
//	name = "storage"
//	bus = "core"
//	order = 1
type Config struct {
	Buses    []BusConfig     `toml:"bus"`
	Services []ServiceConfig `toml:"service"`
}

type BusConfig struct {
	Name    string   `toml:"name"`
	Level   int      `toml:"level"`
	Connect []string `toml:"connect"`
}

type ServiceConfig struct {
	Name  string `toml:"name"`
	Bus   string `toml:"bus"`
	Order int    `toml:"order"`
}

// LoadConfig parses a topology file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Buses) == 0 {
		return nil, fmt.Errorf("%s: no buses defined", path)
	}
	return &cfg, nil
}

// service is a named placeholder interface hosted on a bus. Its single
// published identity is derived from its name, so queries address it as
// iid.New(name).
type service struct {
	object.ExIntf
	name string
}

func newService(name string) *service {
	s := &service{name: name}
	s.Init(s, []object.Export{{ID: iid.New(name), Value: s}})
	return s
}

func (s *service) Name() string { return s.name }

// Graph is an assembled topology. Buses and services stay addressable
// by their config names; Close tears everything down.
type Graph struct {
	buses    map[string]handle.Ref[*bus.Bus]
	services map[string]handle.Ref[*service]
	order    []string // bus names in config order
}

// BuildGraph assembles the configured topology: every bus is created,
// services are hosted on their buses, then the connect lists are applied
// in config order.
func BuildGraph(cfg *Config) (*Graph, error) {
	g := &Graph{
		buses:    make(map[string]handle.Ref[*bus.Bus]),
		services: make(map[string]handle.Ref[*service]),
	}

	for _, bc := range cfg.Buses {
		if bc.Name == "" {
			g.Close()
			return nil, fmt.Errorf("bus with empty name")
		}
		if _, dup := g.buses[bc.Name]; dup {
			g.Close()
			return nil, fmt.Errorf("duplicate bus %q", bc.Name)
		}
		if bc.Level < 0 {
			g.Close()
			return nil, fmt.Errorf("bus %q: negative level %d", bc.Name, bc.Level)
		}
		g.buses[bc.Name] = handle.New(bus.New(bc.Level))
		g.order = append(g.order, bc.Name)
	}

	for _, sc := range cfg.Services {
		host, ok := g.buses[sc.Bus]
		if !ok {
			g.Close()
			return nil, fmt.Errorf("service %q: unknown bus %q", sc.Name, sc.Bus)
		}
		if _, dup := g.services[sc.Name]; dup {
			g.Close()
			return nil, fmt.Errorf("duplicate service %q", sc.Name)
		}
		svc := handle.New(newService(sc.Name))
		if err := host.Get().ConnectWithOrder(svc.Get(), sc.Order); err != nil {
			svc.Clear()
			g.Close()
			return nil, fmt.Errorf("connect service %q to bus %q: %w", sc.Name, sc.Bus, err)
		}
		g.services[sc.Name] = svc
	}

	for _, bc := range cfg.Buses {
		parent := g.buses[bc.Name]
		for _, childName := range bc.Connect {
			child, ok := g.buses[childName]
			if !ok {
				g.Close()
				return nil, fmt.Errorf("bus %q: unknown connection %q", bc.Name, childName)
			}
			if err := parent.Get().Connect(child.Get()); err != nil {
				g.Close()
				return nil, fmt.Errorf("connect bus %q to bus %q: %w", childName, bc.Name, err)
			}
		}
	}

	return g, nil
}

// Bus returns the named bus, or nil.
func (g *Graph) Bus(name string) *bus.Bus {
	if r, ok := g.buses[name]; ok {
		return r.Get()
	}
	return nil
}

// Service returns the named service, or nil.
func (g *Graph) Service(name string) *service {
	if r, ok := g.services[name]; ok {
		return r.Get()
	}
	return nil
}

// Origin resolves a config name to a queryable object, trying services
// first.
func (g *Graph) Origin(name string) intfbus.Interface {
	if s := g.Service(name); s != nil {
		return s
	}
	if b := g.Bus(name); b != nil {
		return b
	}
	return nil
}

// OriginNames lists all addressable names: services sorted, then buses
// in config order.
func (g *Graph) OriginNames() []string {
	names := make([]string, 0, len(g.services)+len(g.buses))
	for name := range g.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, g.order...)
}

// Close releases every handle. Buses tear down their hosted services
// and owned children when the last reference drops.
func (g *Graph) Close() {
	for name, r := range g.services {
		r.Clear()
		delete(g.services, name)
	}
	for name, r := range g.buses {
		r.Clear()
		delete(g.buses, name)
	}
	g.order = nil
}
