/*
Package filter rewrites phpdoc-commented PHP source so Doxygen can parse it.

	+-------------+      +------------+      +-----------+
	|   Buffer    | ---> | Gatekeeper | ---> |   Rules   | ---> text
	| (path,text) |      |  (skip?)   |      | R1 .. R14 |
	+-------------+      +-----+------+      +-----------+
	                           |
	                           +---> Skip (empty output + notice)

🔄 Flow:
 1. The Gatekeeper rejects localization files, CLI scripts, front-end scripts and
    configured exclusions. A rejected file produces no output.
 2. Every other file goes through the rules in a fixed order. Each rule sees the
    output of the one before it and runs exactly once.

Rules never fail. A rule whose pattern does not match leaves the text untouched.
A Filter holds only compiled patterns and is safe for concurrent use.
*/
package filter
