// Mergelens reviews GitLab merge requests with LLM providers.
//
// It runs as a webhook service: GitLab posts merge request events, mergelens
// fetches the MR and its diff, gathers branch context from a local working
// copy, asks the configured provider for a structured review, and renders
// the result as a markdown report. A CLI mode reviews local diff files
// without a webhook.
//
// Usage:
//
//	mergelens serve                       # run the webhook server
//	mergelens review --diff change.diff   # review a local diff file
//	mergelens review --diff -             # review a diff from stdin
//	mergelens rules                       # print the effective review rules
//	mergelens config show                 # print the effective configuration
//
// See https://github.com/mergelens/mergelens for full documentation.
package main
