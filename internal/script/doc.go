// Package script renders installation scripts for a chosen tool set in
// PowerShell or Bash. Rendering is a pure function of its inputs.
package script
