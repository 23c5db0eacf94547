// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"dsbench/cli/internal/dsn"
	"dsbench/cli/internal/keychain"
)

// validTargets are the import/verify engines the harness knows.
var validTargets = []string{"postgres", "mysql", "mariadb"}

// checkTarget validates a --target value.
func checkTarget(target string) error {
	for _, t := range validTargets {
		if t == target {
			return nil
		}
	}
	return fmt.Errorf("unknown target %q (use postgres, mysql or mariadb)", target)
}

// targetIsMySQL reports whether target speaks the MySQL protocol.
func targetIsMySQL(target string) bool {
	return target == "mysql" || target == "mariadb"
}

// envDSNVar returns the environment variable consulted for a target's DSN.
func envDSNVar(target string) string {
	return "DSBENCH_" + strings.ToUpper(target) + "_DSN"
}

// resolveDSN finds the DSN for a target: environment variable first, then
// OS keychain, then the --dsn flag. The result is normalized for the
// target's driver.
func resolveDSN(target, flagDSN string) (string, error) {
	raw := strings.TrimSpace(os.Getenv(envDSNVar(target)))

	if raw == "" {
		if km, err := keychain.GetManager(); err == nil {
			if stored, err := km.LoadDSN(target); err == nil {
				raw = strings.TrimSpace(stored)
			}
		}
	}

	if raw == "" {
		raw = strings.TrimSpace(flagDSN)
	}
	if raw == "" {
		return "", fmt.Errorf("no DSN configured for %s: set %s, run 'dsbench connect --target %s', or pass --dsn",
			target, envDSNVar(target), target)
	}

	return dsn.Parse(raw)
}
