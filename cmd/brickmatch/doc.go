// Command brickmatch imports a local LEGO catalog and resolves each record
// to an Amazon ASIN through a cascade of match strategies, tracking progress
// in a local SQLite database between runs.
package main
