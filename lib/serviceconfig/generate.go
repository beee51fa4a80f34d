// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package serviceconfig emits the two configuration artifacts the
// streaming service and its process manager read: a process-manager
// config carrying the resolved network address, and a service config
// carrying the database connection parameters and the global extent.
// Artifacts are keyed by database name so several target databases can
// share one working directory.
package serviceconfig

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/template"
)

var (
	//go:embed templates/process.yml
	defaultProcessTemplate []byte

	//go:embed templates/service.yml
	defaultServiceTemplate []byte
)

// InterfaceError reports that no usable address could be resolved for
// service config generation. It is fatal to this stage only.
type InterfaceError struct {
	// Interface is the requested interface name, or empty when
	// auto-selection was attempted.
	Interface string

	// Reason describes the failure.
	Reason string
}

func (e *InterfaceError) Error() string {
	if e.Interface == "" {
		return fmt.Sprintf("resolving service address: %s", e.Reason)
	}
	return fmt.Sprintf("resolving address of interface %s: %s", e.Interface, e.Reason)
}

// Generator renders the two service configuration artifacts.
type Generator struct {
	// WorkDir receives the rendered artifacts.
	WorkDir string

	// Interface names the network interface whose IPv4 address goes
	// into the process-manager config. Empty selects the first
	// non-loopback interface with an IPv4 address.
	Interface string

	// Database connection parameters.
	Database string
	User     string
	Host     string
	Table    string

	// Overrides for the built-in templates; nil means built-in.
	ProcessTemplate []byte
	ServiceTemplate []byte

	// resolveIP overrides address resolution in tests.
	resolveIP func(string) (string, error)
}

// ProcessPath returns the process-manager artifact path for a
// database under workDir.
func ProcessPath(workDir, database string) string {
	return filepath.Join(workDir, fmt.Sprintf("%s_uwsgi.yml", database))
}

// Path returns the service artifact path for a database under
// workDir. The downstream spatial-index and hierarchy stages take this
// path as their argument.
func Path(workDir, database string) string {
	return filepath.Join(workDir, fmt.Sprintf("%s_service.yml", database))
}

// Generate resolves the service address and renders both artifacts.
// The service config has tab characters normalized to spaces — the
// downstream yaml parser rejects tabs in indentation. Returns the
// service config path for the downstream stages.
func (g *Generator) Generate(globalExtent extent.Extent) (string, error) {
	resolve := g.resolveIP
	if resolve == nil {
		resolve = resolveInterfaceIP
	}
	ip, err := resolve(g.Interface)
	if err != nil {
		return "", err
	}

	processValues := map[string]string{"DB": g.Database, "IP": ip}
	if err := template.RenderFile(ProcessPath(g.WorkDir, g.Database), orDefault(g.ProcessTemplate, defaultProcessTemplate),
		processValues, "DB", "IP"); err != nil {
		return "", fmt.Errorf("process-manager config: %w", err)
	}

	bound := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	serviceValues := map[string]string{
		"TABLE": g.Table,
		"HOST":  g.Host,
		"DB":    g.Database,
		"USER":  g.User,
		"XMIN":  bound(globalExtent.MinX),
		"YMIN":  bound(globalExtent.MinY),
		"ZMIN":  bound(globalExtent.MinZ),
		"XMAX":  bound(globalExtent.MaxX),
		"YMAX":  bound(globalExtent.MaxY),
		"ZMAX":  bound(globalExtent.MaxZ),
	}
	rendered, err := template.Render(orDefault(g.ServiceTemplate, defaultServiceTemplate), serviceValues,
		"TABLE", "HOST", "DB", "USER", "XMIN", "YMIN", "ZMIN", "XMAX", "YMAX", "ZMAX")
	if err != nil {
		return "", fmt.Errorf("service config: %w", err)
	}
	rendered = bytes.ReplaceAll(rendered, []byte("\t"), []byte("    "))

	path := Path(g.WorkDir, g.Database)
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return "", fmt.Errorf("writing service config %s: %w", path, err)
	}
	return path, nil
}

// resolveInterfaceIP returns the first IPv4 address of the named
// interface, or of the first up non-loopback interface when name is
// empty. Never returns an empty address without an error.
func resolveInterfaceIP(name string) (string, error) {
	if name != "" {
		netInterface, err := net.InterfaceByName(name)
		if err != nil {
			return "", &InterfaceError{Interface: name, Reason: err.Error()}
		}
		return firstIPv4(netInterface)
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return "", &InterfaceError{Reason: err.Error()}
	}
	for _, candidate := range interfaces {
		if candidate.Flags&net.FlagUp == 0 || candidate.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ip, err := firstIPv4(&candidate); err == nil {
			return ip, nil
		}
	}
	return "", &InterfaceError{Reason: "no up non-loopback interface with an IPv4 address"}
}

func firstIPv4(netInterface *net.Interface) (string, error) {
	addresses, err := netInterface.Addrs()
	if err != nil {
		return "", &InterfaceError{Interface: netInterface.Name, Reason: err.Error()}
	}
	for _, address := range addresses {
		ipNet, ok := address.(*net.IPNet)
		if !ok {
			continue
		}
		if ipv4 := ipNet.IP.To4(); ipv4 != nil {
			return ipv4.String(), nil
		}
	}
	return "", &InterfaceError{Interface: netInterface.Name, Reason: "interface has no IPv4 address"}
}

func orDefault(override, fallback []byte) []byte {
	if override != nil {
		return override
	}
	return fallback
}
