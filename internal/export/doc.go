// Package export serializes conversation lists to CSV. The web console and
// the export subcommand share WriteCSV so both produce identical files.
package export
