// Package config manages user-level settings stored at ~/.envmint/settings.yaml:
// the directories probed for installed tools, whether a scan runs on startup,
// the default script dialect and the probe/scan tuning knobs. Values can be
// overridden with ENVMINT_* environment variables.
package config
