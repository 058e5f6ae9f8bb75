// doc.go — Package documentation for scenario orchestration.

// Package scenario runs one user action end to end: clear and arm the network
// monitor, perform the action, and resolve which outcome appeared first. When
// the outcome is a results table, CrossValidate compares the rows the UI
// rendered with the dataset the API serves.
package scenario
