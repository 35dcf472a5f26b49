// Package main hosts the pyward CLI.
//
// "pyward serve" runs the MCP server over stdio for AI coding agents. The
// remaining commands run the same checker and consistency tracker once
// from a terminal or CI job and print a table or JSON.
package main
