// Package userdata manages the ~/.envmint/ home directory: path resolution
// (with the ENVMINT_HOME override), first-run initialization, permission
// enforcement and the health check behind `envmint doctor`.
package userdata
