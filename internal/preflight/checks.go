package preflight

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"markerid/internal/config"
	"markerid/internal/roster"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRoster verifies that the roster file can be read and rewritten, that
// the label format names existing columns, and that at least one mapped
// column is present.
func CheckRoster(cfg *config.Config) Result {
	const name = "Roster"
	path := cfg.Paths.RosterFile

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: claims cannot be saved: %v)", path, err)}
	}

	r, err := roster.Load(path, cfg.Roster.ClaimColumn)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if _, err := roster.CompileTemplate(cfg.Roster.LabelFormat, r); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: label_format: %v)", path, err)}
	}

	columns, err := cfg.ColumnMap()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var missing []string
	present := 0
	for _, column := range columns {
		if r.HasColumn(column) {
			present++
		} else {
			missing = append(missing, column)
		}
	}
	if present == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no mapped column found in header)", path)}
	}
	detail := fmt.Sprintf("%s (%d records, %d compared columns)", path, r.Len(), present)
	if len(missing) > 0 {
		sort.Strings(missing)
		detail += "; not in header: " + strings.Join(missing, ", ")
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

