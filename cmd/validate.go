package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// validateKeys rejects unknown, excluded and (without --risky) risky keys
// before anything is touched.
func validateKeys(app *App, keys []string, risky bool) error {
	p := app.Printer
	excluded := app.Settings.Excluded()

	for _, k := range keys {
		if !app.Registry.Has(k) {
			valid := app.Registry.Keys()
			sort.Strings(valid)
			p.Failure("Unknown key: " + k)
			p.Dim("Valid keys: " + strings.Join(valid, ", "))
			return validationFailed("unknown key: " + k)
		}
		if excluded[k] {
			p.Warning(k + " is excluded in config. Remove from exclude_targets to clean.")
			return validationFailed(k + " is excluded")
		}
		if app.Registry.Risky(k) && !risky {
			p.Warning(k + " is risky. Use --risky to include.")
			return validationFailed(k + " is risky")
		}
	}
	return nil
}

// checkDangerous refuses dangerous targets unless --force is set.
func checkDangerous(app *App, keys []string, force bool) error {
	if force {
		return nil
	}
	var dangerous []string
	for _, k := range keys {
		if app.Registry.Dangerous(k) {
			dangerous = append(dangerous, k)
		}
	}
	if len(dangerous) == 0 {
		return nil
	}

	p := app.Printer
	p.Blank()
	p.Failure("One or more selected targets are dangerous and require the --force flag to proceed.")
	p.Dim("Rerun with --force if you really intend to delete them.")
	return validationFailed(fmt.Sprintf("dangerous targets without --force: %s", strings.Join(dangerous, ", ")))
}
