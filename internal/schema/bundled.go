package schema

import "github.com/fleetops/fleetquery/internal/domain/entity"

// bundledTables is the absolute fallback when neither the network
// source nor a disk cache is reachable: a minimal set of critical
// tables so query assistance keeps working offline.
func bundledTables() map[string]entity.TableSchema {
	return map[string]entity.TableSchema{
		"processes": {
			Name:        "processes",
			Description: "All running processes on the host system",
			Platforms:   []string{"darwin", "linux", "windows"},
			Columns:     []string{"pid", "name", "path", "cmdline", "state", "uid", "gid"},
			Examples:    []string{"SELECT pid, name, cmdline FROM processes WHERE name = 'chrome';"},
		},
		"rpm_packages": {
			Name:        "rpm_packages",
			Description: "RPM packages installed on RHEL/CentOS/Fedora systems",
			Platforms:   []string{"linux"},
			Columns:     []string{"name", "version", "release", "arch", "epoch", "install_time", "vendor"},
			Examples:    []string{"SELECT name, version FROM rpm_packages WHERE name = 'platform-python';"},
			Notes:       "Use version_compare() function with 'RHEL' flavor for version comparisons",
		},
	}
}
