package config

import (
	"errors"
	"fmt"
)

// RequireNonEmpty reports every env name in pairs whose value is empty.
// pairs maps env name to value.
func RequireNonEmpty(pairs map[string]string, order ...string) error {
	var errs []error
	for _, name := range order {
		if pairs[name] == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", name))
		}
	}
	return errors.Join(errs...)
}
